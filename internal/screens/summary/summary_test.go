package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fequiz/internal/router"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/session"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "quiz" }
func (s *stubScreen) Title() string                           { return "Quiz" }

func TestSummaryScreen_Title(t *testing.T) {
	s := New(session.BuildSummary(4, 5), nil)
	if s.Title() != "Result" {
		t.Errorf("Title = %q, want %q", s.Title(), "Result")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	tests := []struct {
		correct, total int
		want           []string
	}{
		{4, 5, []string{"4 / 5", "80%", "Excellent"}},
		{3, 5, []string{"3 / 5", "60%", "Good"}},
		{1, 2, []string{"1 / 2", "50%", "Needs work"}},
		{0, 0, []string{"0 / 0", "0%", "Needs work"}},
	}
	for _, tt := range tests {
		view := New(session.BuildSummary(tt.correct, tt.total), nil).View(80, 24)
		for _, want := range tt.want {
			if !strings.Contains(view, want) {
				t.Errorf("view for %d/%d missing %q", tt.correct, tt.total, want)
			}
		}
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(session.BuildSummary(1, 1), nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter (pop)")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("Enter produced %T, want router.PopScreenMsg", cmd())
	}
}

func TestSummaryScreen_Restart(t *testing.T) {
	calls := 0
	next := &stubScreen{}
	s := New(session.BuildSummary(1, 1), func() screen.Screen {
		calls++
		return next
	})

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("expected a command on r")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("r produced %T, want router.ReplaceScreenMsg", cmd())
	}
	if msg.Screen != next {
		t.Error("expected the restarted screen to replace the result")
	}
	if calls != 1 {
		t.Errorf("restart calls = %d, want 1", calls)
	}
}

func TestSummaryScreen_RestartUnavailable(t *testing.T) {
	s := New(session.BuildSummary(1, 1), nil)
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"}); cmd != nil {
		t.Error("expected no command without a restart function")
	}
	if hints := s.KeyHints(); len(hints) != 1 {
		t.Errorf("KeyHints length = %d, want 1", len(hints))
	}
}
