package glossary

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/screen/screentest"
)

func testBackend() *screentest.Backend {
	b := screentest.New()
	b.Terms = []catalog.Term{
		{ID: "cpm", Term: "CPM", FullName: "Critical Path Method", Meaning: "Critical path analysis",
			Category: catalog.CategoryManagement, Subcategory: "Project management",
			Description: "Finds the longest chain of dependent activities.", Tips: "Zero float means critical."},
		{ID: "swot", Term: "SWOT", Meaning: "Situation analysis", Category: catalog.CategoryStrategy,
			Subcategory: "Corporate activity", Description: "Strengths, weaknesses, opportunities, threats."},
	}
	return b
}

func TestGlossaryScreen_ListsAllInitially(t *testing.T) {
	s := New(testBackend())
	s.Update(s.search("")())

	view := s.View(100, 30)
	for _, want := range []string{"CPM", "SWOT", "Critical Path Method", "Tip: Zero float means critical."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGlossaryScreen_SearchFromInput(t *testing.T) {
	s := New(testBackend())
	for _, r := range "swot" {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if got := s.input.Value(); got != "swot" {
		t.Fatalf("input = %q, want swot", got)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected Enter to search")
	}
	s.Update(cmd())

	if len(s.terms) != 1 || s.terms[0].ID != "swot" {
		t.Fatalf("terms = %+v, want only swot", s.terms)
	}
	if !strings.Contains(s.View(100, 30), "Corporate activity") {
		t.Error("expected selected term detail")
	}
}

func TestGlossaryScreen_Browse(t *testing.T) {
	s := New(testBackend())
	s.Update(s.search("")())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.selected != 0 {
		t.Errorf("selected = %d, want 0", s.selected)
	}
}

func TestGlossaryScreen_NoMatchesAndError(t *testing.T) {
	b := testBackend()
	s := New(b)
	s.Update(s.search("kanban")())
	if !strings.Contains(s.View(100, 30), `No terms match "kanban"`) {
		t.Error("expected no-match message")
	}

	b.SetFetchErr(errors.New("HTTP 503: glossary unavailable"))
	s.Update(s.search("")())
	if !strings.Contains(s.View(100, 30), "glossary unavailable") {
		t.Error("expected error message")
	}
}
