package glossary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/ui/components"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

const searchTimeout = 5 * time.Second

type termsLoadedMsg struct {
	Query string
	Terms []catalog.Term
	Err   error
}

// GlossaryScreen searches glossary terms and shows the selected one.
type GlossaryScreen struct {
	backend  screen.Backend
	input    components.TextInput
	query    string
	terms    []catalog.Term
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*GlossaryScreen)(nil)
var _ screen.KeyHintProvider = (*GlossaryScreen)(nil)

// New creates a GlossaryScreen that initially lists every term.
func New(backend screen.Backend) *GlossaryScreen {
	return &GlossaryScreen{
		backend: backend,
		input:   components.NewTextInput("term, meaning or description", 40),
	}
}

func (s *GlossaryScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.search(s.input.Value()))
}

func (s *GlossaryScreen) search(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		terms, err := s.backend.Glossary(ctx, "", query)
		return termsLoadedMsg{Query: query, Terms: terms, Err: err}
	}
}

func (s *GlossaryScreen) Title() string {
	return "Glossary"
}

func (s *GlossaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Search"},
		{Key: "↑↓", Description: "Browse"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *GlossaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case termsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.query = msg.Query
		s.terms = msg.Terms
		s.selected = 0
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return s, s.search(s.input.Value())
		case "up":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down":
			if s.selected < len(s.terms)-1 {
				s.selected++
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *GlossaryScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(layout.Centered("Error: "+s.errMsg, width, theme.Error))
		return b.String()
	case !s.loaded:
		b.WriteString(layout.Centered("Loading glossary...", width, theme.TextDim))
		return b.String()
	case len(s.terms) == 0:
		b.WriteString(layout.Centered(fmt.Sprintf("No terms match %q", s.query), width, theme.TextDim))
		return b.String()
	}

	listWidth := min(width-4, 72)
	var rows []string
	for i, t := range s.terms {
		line := fmt.Sprintf("%s  %s", t.Term, t.Meaning)
		if i == s.selected {
			rows = append(rows, theme.Selected.Render("▸ "+line))
		} else {
			rows = append(rows, theme.Unselected.Render("  "+line))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(listWidth).Render(strings.Join(rows, "\n"))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Width(listWidth).Render(renderTerm(s.terms[s.selected]))))
	return b.String()
}

func renderTerm(t catalog.Term) string {
	var b strings.Builder
	title := t.Term
	if t.FullName != "" {
		title += " (" + t.FullName + ")"
	}
	b.WriteString(theme.Selected.Render(title))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%s / %s", t.Category.Label(), t.Subcategory)))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(t.Description))
	if len(t.Examples) > 0 {
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render("Examples: " + strings.Join(t.Examples, "; ")))
	}
	if t.Tips != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("Tip: " + t.Tips))
	}
	return b.String()
}
