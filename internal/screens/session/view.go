package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/ui/components"
	"github.com/abhisek/fequiz/internal/ui/layout"
	"github.com/abhisek/fequiz/internal/ui/theme"
)

// choiceWidth caps the width of the choice block so long lines wrap.
const choiceWidth = 72

// renderQuestionView renders the current question, its choices and, once
// answered, the verdict.
func (s *SessionScreen) renderQuestionView(width int) string {
	item := s.state.Current()
	if item == nil {
		return renderLoading(width)
	}
	q := item.Question
	fb := s.state.Feedback()

	var b strings.Builder

	// Category line with the countdown on the right.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s / %s", categoryName(q.CategoryName, q.Category.Label()), q.Subcategory))

	infoLine := infoLeft
	if timer := s.renderTimer(); timer != "" {
		rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(timer) - 4
		if rightPad > 0 {
			infoLine += strings.Repeat(" ", rightPad) + timer
		}
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	textWidth := min(width-4, choiceWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Bold(true).Render(q.Text)))
	b.WriteString("\n\n")

	list := components.ChoiceList{
		Choices:  item.Choices[:],
		Selected: s.state.Selected(),
	}
	if fb != nil {
		list.Selected = fb.Selected
		list.Revealed = true
		list.CorrectPosition = fb.CorrectPosition
	}
	choices := lipgloss.NewStyle().Width(textWidth).Render(strings.TrimRight(list.View(), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, choices))
	b.WriteString("\n")

	if fb != nil {
		b.WriteString(s.renderFeedback(width, textWidth))
	}

	if s.state.Submitting() {
		b.WriteString("\n" + layout.Centered("Submitting...", width, theme.TextDim))
	}
	if s.notice != "" {
		b.WriteString("\n" + layout.Centered(s.notice, width, theme.Accent))
	}
	if s.errMsg != "" {
		b.WriteString("\n" + layout.Centered("Error: "+s.errMsg, width, theme.Error))
	}
	if s.state.TimeoutPending() && !s.state.Submitting() {
		b.WriteString("\n" + layout.Centered("Time's up, but the answer was not recorded. Press Enter to retry.", width, theme.TextDim))
	}

	return b.String()
}

func (s *SessionScreen) renderTimer() string {
	if !s.state.TimerEnabled() {
		return ""
	}
	rem := s.state.Remaining()
	style := theme.TimerNormal
	if rem <= theme.LowTimeSeconds {
		style = theme.TimerLow
	}
	return style.Render(fmt.Sprintf("⏱ %d:%02d", rem/60, rem%60))
}

// renderFeedback renders the verdict, explanation and related terms.
func (s *SessionScreen) renderFeedback(width, textWidth int) string {
	fb := s.state.Feedback()
	res := fb.Result

	var b strings.Builder
	b.WriteString("\n")

	switch {
	case fb.TimedOut:
		b.WriteString(layout.Centered("Time's up!", width, theme.Accent))
	case res.IsCorrect:
		b.WriteString(layout.Centered("Correct!", width, theme.Success))
	default:
		b.WriteString(layout.Centered("Incorrect", width, theme.Error))
	}
	b.WriteString("\n")
	b.WriteString(layout.Centered(
		fmt.Sprintf("Answer: %d   (%d/%d correct on this question)",
			fb.CorrectPosition+1, res.Stats.CorrectCount, res.Stats.Attempts),
		width, theme.TextDim))
	b.WriteString("\n\n")

	if res.Explanation != "" {
		expl := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Render(res.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, expl))
		b.WriteString("\n")
	}

	if len(res.RelatedTerms) > 0 {
		var lines []string
		for _, t := range res.RelatedTerms {
			lines = append(lines, fmt.Sprintf("• %s: %s", t.Term, t.Meaning))
		}
		terms := lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim).Render(strings.Join(lines, "\n"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, terms))
		b.WriteString("\n")
	}

	next := "Press n for the next question"
	if s.state.Index()+1 >= s.state.Len() {
		next = "Press n to see your result"
	}
	b.WriteString("\n" + layout.Centered(next, width, theme.TextDim))
	return b.String()
}

func categoryName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func renderLoading(width int) string {
	return layout.Message("Loading questions...", width, theme.TextDim)
}

func renderError(width int, msg string) string {
	return layout.Message(fmt.Sprintf("Could not load questions: %s\n\nPress r to retry.", msg), width, theme.Error)
}

func renderEmpty(width int, msg string) string {
	return layout.Message(msg, width, theme.TextDim)
}

func renderFinished(width int) string {
	return layout.Message("Session complete.", width, theme.TextDim)
}
