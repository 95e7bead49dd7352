package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/ui/components"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

const loadTimeout = 5 * time.Second

type progressLoadedMsg struct {
	Summary *mastery.Summary
	Err     error
}

// ProgressScreen shows overall and per-category correct rates.
type ProgressScreen struct {
	backend screen.Backend
	summary *mastery.Summary
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a ProgressScreen.
func New(backend screen.Backend) *ProgressScreen {
	return &ProgressScreen{backend: backend}
}

func (s *ProgressScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		sum, err := s.backend.Progress(ctx)
		return progressLoadedMsg{Summary: sum, Err: err}
	}
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(progressLoadedMsg); ok {
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.summary = msg.Summary
	}
	return s, nil
}

func (s *ProgressScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Message("Error: "+s.errMsg, width, theme.Error)
	}
	if !s.loaded || s.summary == nil {
		return layout.Message("Loading progress...", width, theme.TextDim)
	}
	sum := s.summary

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("Overall correct rate: %.1f%%", sum.OverallCorrectRate)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(
		fmt.Sprintf("%d correct of %d answered   ·   %d weak questions",
			sum.TotalCorrect, sum.TotalAttempts, sum.WeakQuestionsCount),
		width, theme.TextDim))
	b.WriteString("\n\n")

	barWidth := min(width-8, 64)
	for _, id := range catalog.CategoryIDs {
		cs := sum.CategoryStats[id]
		bar := components.ProgressBar{
			Label:       id.Label(),
			LabelWidth:  12,
			Percent:     rate(cs),
			ShowPercent: true,
			Width:       barWidth,
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Width(barWidth).Render(categoryDetail(cs))))
		b.WriteString("\n\n")
	}

	if !sum.User.CreatedAt.IsZero() {
		b.WriteString(layout.Centered(
			"Tracking since "+sum.User.CreatedAt.Local().Format("Jan 02, 2006"), width, theme.TextDim))
	}
	return b.String()
}

func rate(cs mastery.CategoryStat) float64 {
	if cs.TotalAttempts == 0 {
		return 0
	}
	return float64(cs.CorrectCount) / float64(cs.TotalAttempts)
}

func categoryDetail(cs mastery.CategoryStat) string {
	if cs.TotalAttempts == 0 {
		return "not studied yet"
	}
	detail := fmt.Sprintf("%d/%d correct", cs.CorrectCount, cs.TotalAttempts)
	if cs.LastStudiedAt != nil {
		detail += ", last studied " + cs.LastStudiedAt.Local().Format("Jan 02 15:04")
	}
	return detail
}
