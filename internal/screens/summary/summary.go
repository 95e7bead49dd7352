package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/router"
	"github.com/abhisek/fequiz/internal/screen"
	"github.com/abhisek/fequiz/internal/session"
	"github.com/abhisek/fequiz/internal/ui/components"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

// SummaryScreen displays the result of a finished quiz.
type SummaryScreen struct {
	summary session.Summary
	restart func() screen.Screen
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. restart, when set, returns the screen that
// replaces this one when the user asks to play again.
func New(sum session.Summary, restart func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{summary: sum, restart: restart}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Result"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if s.restart != nil {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Play again"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			if s.restart == nil {
				return s, nil
			}
			next := s.restart()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Quiz complete!"))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(
		fmt.Sprintf("Correct: %d / %d", sum.Correct, sum.Total), width, theme.Text))
	b.WriteString("\n\n")

	bandColor := theme.BandColor(string(sum.Band))
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(bandColor).
		Bold(true).
		Render(fmt.Sprintf("%d%%  %s", sum.Percentage, BandLabel(sum.Band))))
	b.WriteString("\n\n")

	bar := components.ProgressBar{
		Percent:     float64(sum.Percentage) / 100,
		Width:       min(width-8, 50),
		Fill:        bandColor,
		ShowPercent: false,
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(bandMessage(sum.Band), width, theme.TextDim))
	return b.String()
}

// BandLabel is the display name of a score band.
func BandLabel(b session.Band) string {
	switch b {
	case session.BandExcellent:
		return "Excellent"
	case session.BandGood:
		return "Good"
	default:
		return "Needs work"
	}
}

func bandMessage(b session.Band) string {
	switch b {
	case session.BandExcellent:
		return "Ready for the exam on this material."
	case session.BandGood:
		return "Solid. Review the questions you missed."
	default:
		return "Try the weak questions set to focus your review."
	}
}
