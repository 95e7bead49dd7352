package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

// Limit is the number of entries requested.
const Limit = 50

const loadTimeout = 5 * time.Second

type historyLoadedMsg struct {
	Items []mastery.HistoryItem
	Err   error
}

// HistoryScreen lists recent answers, newest first.
type HistoryScreen struct {
	backend  screen.Backend
	items    []mastery.HistoryItem
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(backend screen.Backend) *HistoryScreen {
	return &HistoryScreen{
		backend:  backend,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		items, err := s.backend.History(ctx, Limit)
		return historyLoadedMsg{Items: items, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.items = msg.Items
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Message("Error: "+s.errMsg, width, theme.Error)
	}
	if !s.loaded {
		return layout.Message("Loading history...", width, theme.TextDim)
	}
	if len(s.items) == 0 {
		return layout.Message("No answers yet. Start a quiz!", width, theme.TextDim)
	}

	// Keep the selected row on screen.
	visible := max(height-2, 1)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}

	var b strings.Builder
	b.WriteString("\n")
	for i := start; i < len(s.items) && i < start+visible; i++ {
		b.WriteString(s.renderRow(i, width))
		b.WriteString("\n")
		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render(detail(s.items[i]))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *HistoryScreen) renderRow(i, width int) string {
	item := s.items[i]

	mark := theme.Correct.Render("✓")
	switch {
	case item.SelectedAnswer == mastery.TimeoutIndex:
		mark = lipgloss.NewStyle().Foreground(theme.Accent).Render("⏱")
	case !item.IsCorrect:
		mark = theme.Incorrect.Render("✗")
	}

	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}

	text := item.QuestionID + " (no longer in the question bank)"
	if q := item.Question; q != nil {
		text = fmt.Sprintf("[%s] %s", q.CategoryName, q.QuestionText)
	}
	line := fmt.Sprintf("%s%s  %s", prefix, item.AnsweredAt.Local().Format("Jan 02 15:04"), text)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		style = theme.Selected
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, mark+" "+style.Render(line))
}

func detail(item mastery.HistoryItem) string {
	answer := "timed out"
	if item.SelectedAnswer != mastery.TimeoutIndex {
		answer = fmt.Sprintf("chose %d", item.SelectedAnswer+1)
	}
	verdict := "incorrect"
	if item.IsCorrect {
		verdict = "correct"
	}
	out := fmt.Sprintf("    %s: %s, %s", item.QuestionID, answer, verdict)
	if q := item.Question; q != nil && q.Subcategory != "" {
		out += " · " + q.Subcategory
	}
	return out
}
