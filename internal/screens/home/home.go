package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/router"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/screens/glossary"
	"github.com/abhisek/fequiz/internal/screens/history"
	"github.com/abhisek/fequiz/internal/screens/progress"
	"github.com/abhisek/fequiz/internal/screens/questions"
	sessionscreen "github.com/abhisek/fequiz/internal/screens/session"
	sess "github.com/abhisek/fequiz/internal/session"
	"github.com/abhisek/fequiz/internal/ui/components"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

const loadTimeout = 5 * time.Second

type progressLoadedMsg struct {
	Summary *mastery.Summary
	Err     error
}

// HomeScreen is the main menu. It shows a one-line progress summary that is
// refreshed every time the screen becomes active again.
type HomeScreen struct {
	backend  screen.Backend
	defaults sess.Config
	menu     components.Menu
	summary  *mastery.Summary
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen. defaults carries the count, shuffle and timer
// settings applied to every quiz started from the menu.
func New(backend screen.Backend, defaults sess.Config) *HomeScreen {
	h := &HomeScreen{backend: backend, defaults: defaults}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	quiz := func(label string, cfg sess.Config) components.MenuItem {
		return components.MenuItem{Label: label, Action: func() tea.Cmd {
			return push(sessionscreen.New(h.backend, cfg))
		}}
	}

	all := h.defaults
	all.Mode = sess.ModeNormal
	all.Category = ""
	items := []components.MenuItem{quiz("All categories", all)}
	for _, id := range catalog.CategoryIDs {
		cfg := h.defaults
		cfg.Mode = sess.ModeNormal
		cfg.Category = id
		items = append(items, quiz(id.Label(), cfg))
	}

	weak := h.defaults
	weak.Mode = sess.ModeWeak
	weak.Category = ""
	items = append(items,
		quiz("Weak questions", weak),
		components.MenuItem{Label: "Questions", Action: func() tea.Cmd {
			return push(questions.New(h.backend))
		}},
		components.MenuItem{Label: "Progress", Action: func() tea.Cmd {
			return push(progress.New(h.backend))
		}},
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			return push(history.New(h.backend))
		}},
		components.MenuItem{Label: "Glossary", Action: func() tea.Cmd {
			return push(glossary.New(h.backend))
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
	return items
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		sum, err := h.backend.Progress(ctx)
		return progressLoadedMsg{Summary: sum, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(progressLoadedMsg); ok {
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			h.summary = nil
		} else {
			h.errMsg = ""
			h.summary = msg.Summary
		}
		h.updateWeakHint()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// updateWeakHint shows the weak-set size next to its menu entry.
func (h *HomeScreen) updateWeakHint() {
	for i := range h.menu.Items {
		if h.menu.Items[i].Label != "Weak questions" {
			continue
		}
		if h.summary == nil {
			h.menu.Items[i].Hint = ""
			return
		}
		h.menu.Items[i].Hint = fmt.Sprintf("(%d)", h.summary.WeakQuestionsCount)
	}
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Fundamental IT Engineer Exam Practice"))

	sections = append(sections, h.renderStats(width))

	menu := theme.Card.Width(40).Render(strings.TrimRight(h.menu.View(), "\n"))
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))

	return "\n" + strings.Join(sections, "\n\n")
}

func (h *HomeScreen) renderStats(width int) string {
	if h.errMsg != "" {
		return layout.Centered("Server unavailable: "+h.errMsg, width, theme.Error)
	}
	if h.summary == nil {
		return layout.Centered("Loading progress...", width, theme.TextDim)
	}
	s := h.summary
	line := fmt.Sprintf("Answered %d   Correct %d   Rate %.1f%%   Weak %d",
		s.TotalAttempts, s.TotalCorrect, s.OverallCorrectRate, s.WeakQuestionsCount)
	return layout.Centered(line, width, theme.TextDim)
}
