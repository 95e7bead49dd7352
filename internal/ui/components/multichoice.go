package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fequiz/internal/ui/theme"
)

// ChoiceList renders the four choices of a question. It holds no state of
// its own; the quiz session owns the selection and the verdict.
type ChoiceList struct {
	Choices []string

	// Selected is the highlighted display position, or -1.
	Selected int

	// Revealed switches to verdict colors: the correct choice in green and a
	// wrong pick in red.
	Revealed        bool
	CorrectPosition int
}

// View renders the choices numbered 1-4.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, choice := range c.Choices {
		prefix := "  "
		if i == c.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, choice)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.Revealed && i == c.CorrectPosition:
			style = theme.Correct
			line += "  ✓"
		case c.Revealed && i == c.Selected:
			style = theme.Incorrect
			line += "  ✗"
		case c.Revealed:
			style = theme.Muted
		case i == c.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
