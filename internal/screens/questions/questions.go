// Package questions lists the question bank with each question's answer
// status and opens any one of them as a single-question quiz.
package questions

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
	sessionscreen "github.com/abhisek/fequiz/internal/screens/session"
	sess "github.com/abhisek/fequiz/internal/session"
	"github.com/abhisek/fequiz/internal/ui/components"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

const loadTimeout = 5 * time.Second

// difficulties is the filter cycle; the empty value means any.
var difficulties = []catalog.Difficulty{"", catalog.DifficultyEasy, catalog.DifficultyMedium, catalog.DifficultyHard}

type categoriesLoadedMsg struct {
	Categories []catalog.Category
	Err        error
}

type listLoadedMsg struct {
	Filter catalog.Filter
	Rows   []mastery.ListedQuestion
	Err    error
}

// QuestionsScreen shows the filtered question list.
type QuestionsScreen struct {
	backend    screen.Backend
	input      components.TextInput
	categories []catalog.Category
	category   int // index into categories, -1 for all
	difficulty int // index into difficulties
	search     string
	rows       []mastery.ListedQuestion
	selected   int
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*QuestionsScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionsScreen)(nil)
var _ screen.StatusProvider = (*QuestionsScreen)(nil)

// New creates a QuestionsScreen listing every question.
func New(backend screen.Backend) *QuestionsScreen {
	return &QuestionsScreen{
		backend:  backend,
		input:    components.NewTextInput("question text or subcategory", 40),
		category: -1,
	}
}

// Init loads the categories once and refreshes the list, so statuses are
// current when the screen is revealed again.
func (s *QuestionsScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.input.Init(), s.load()}
	if s.categories == nil {
		cmds = append(cmds, s.loadCategories())
	}
	return tea.Batch(cmds...)
}

func (s *QuestionsScreen) filter() catalog.Filter {
	f := catalog.Filter{Difficulty: difficulties[s.difficulty], Search: s.search}
	if s.category >= 0 && s.category < len(s.categories) {
		f.Category = s.categories[s.category].ID
	}
	return f
}

func (s *QuestionsScreen) load() tea.Cmd {
	f := s.filter()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		rows, err := s.backend.QuestionList(ctx, f)
		return listLoadedMsg{Filter: f, Rows: rows, Err: err}
	}
}

func (s *QuestionsScreen) loadCategories() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		cats, err := s.backend.Categories(ctx)
		return categoriesLoadedMsg{Categories: cats, Err: err}
	}
}

func (s *QuestionsScreen) Title() string {
	return "Questions"
}

func (s *QuestionsScreen) Status() string {
	if !s.loaded {
		return ""
	}
	return fmt.Sprintf("%d questions", len(s.rows))
}

func (s *QuestionsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Search/Open"},
		{Key: "Tab", Description: "Category"},
		{Key: "Shift+Tab", Description: "Difficulty"},
		{Key: "↑↓", Description: "Browse"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *QuestionsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.categories = msg.Categories
		return s, nil

	case listLoadedMsg:
		// Results for a filter that has since changed are dropped.
		if msg.Filter != s.filter() {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.rows = msg.Rows
		s.selected = min(s.selected, max(len(s.rows)-1, 0))
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			if s.input.Value() != s.search {
				s.search = s.input.Value()
				s.selected = 0
				return s, s.load()
			}
			return s, s.open()
		case "tab":
			s.category++
			if s.category >= len(s.categories) {
				s.category = -1
			}
			s.selected = 0
			return s, s.load()
		case "shift+tab":
			s.difficulty = (s.difficulty + 1) % len(difficulties)
			s.selected = 0
			return s, s.load()
		case "up":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down":
			if s.selected < len(s.rows)-1 {
				s.selected++
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// open pushes a single-question quiz for the selected row.
func (s *QuestionsScreen) open() tea.Cmd {
	if len(s.rows) == 0 {
		return nil
	}
	id := s.rows[s.selected].ID
	quiz := sessionscreen.New(s.backend, sess.Config{Mode: sess.ModeSingle, QuestionID: id})
	return func() tea.Msg { return router.PushScreenMsg{Screen: quiz} }
}

func (s *QuestionsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n")
	b.WriteString(layout.Centered(s.filterLine(), width, theme.TextDim))
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(layout.Centered("Error: "+s.errMsg, width, theme.Error))
		return b.String()
	case !s.loaded:
		b.WriteString(layout.Centered("Loading questions...", width, theme.TextDim))
		return b.String()
	case len(s.rows) == 0:
		b.WriteString(layout.Centered("No questions match the filters", width, theme.TextDim))
		return b.String()
	}

	listWidth := min(width-4, 80)
	// Keep the selection visible when the list is taller than the screen.
	visible := max(height-8, 3)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := min(start+visible, len(s.rows))

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, s.renderRow(s.rows[i], i == s.selected, listWidth))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(listWidth).Render(strings.Join(lines, "\n"))))
	return b.String()
}

func (s *QuestionsScreen) filterLine() string {
	cat := "All categories"
	if s.category >= 0 && s.category < len(s.categories) {
		cat = s.categories[s.category].Name
	}
	diff := "any difficulty"
	if d := difficulties[s.difficulty]; d != "" {
		diff = string(d)
	}
	return cat + " · " + diff
}

func (s *QuestionsScreen) renderRow(r mastery.ListedQuestion, selected bool, width int) string {
	glyph := statusGlyph(r.Status)
	text := r.Text
	if limit := width - 12; limit > 0 && len([]rune(text)) > limit {
		text = string([]rune(text)[:limit-1]) + "…"
	}
	score := ""
	if r.Attempts > 0 {
		score = fmt.Sprintf(" %d/%d", r.CorrectCount, r.Attempts)
	}
	line := fmt.Sprintf("%s %s%s", glyph, text, score)
	if selected {
		return theme.Selected.Render("▸ " + line)
	}
	return theme.Unselected.Render("  " + line)
}

func statusGlyph(st mastery.QuestionStatus) string {
	switch st {
	case mastery.StatusCorrect:
		return lipgloss.NewStyle().Foreground(theme.Success).Render("●")
	case mastery.StatusIncorrect:
		return lipgloss.NewStyle().Foreground(theme.Error).Render("×")
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render("○")
}
