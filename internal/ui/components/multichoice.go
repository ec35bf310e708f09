package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/ui/theme"
)

// ChoiceState is the feedback shown on one option.
type ChoiceState int

const (
	ChoiceOpen ChoiceState = iota
	ChoiceCorrect
	ChoiceWrong
)

// Choice is one lettered option.
type Choice struct {
	Key   string
	Text  string
	State ChoiceState
}

// MultiChoice renders a lettered option list. Once Answered, the correct
// and wrong options are colored and the rest are dimmed.
type MultiChoice struct {
	Choices  []Choice
	Cursor   int
	Answered bool
	Width    int
}

// NewMultiChoice creates a multiple-choice list.
func NewMultiChoice(choices []Choice, answered bool, width int) MultiChoice {
	return MultiChoice{Choices: choices, Answered: answered, Width: width}
}

// Move shifts the cursor by delta, clamped to the list.
func (m *MultiChoice) Move(delta int) {
	m.Cursor = max(0, min(m.Cursor+delta, len(m.Choices)-1))
}

// View renders the options, wrapping long text under its letter.
func (m MultiChoice) View() string {
	textWidth := m.Width - 8
	if textWidth < 20 {
		textWidth = 20
	}

	var b strings.Builder
	for i, c := range m.Choices {
		prefix := "  "
		if i == m.Cursor && !m.Answered {
			prefix = "▸ "
		}
		text := lipgloss.NewStyle().Width(textWidth).Render(c.Text)
		text = strings.ReplaceAll(text, "\n", "\n     ")
		line := fmt.Sprintf("%s%s)  %s", prefix, c.Key, text)

		var style lipgloss.Style
		switch {
		case c.State == ChoiceCorrect:
			style = theme.Correct
		case c.State == ChoiceWrong:
			style = theme.Incorrect
		case m.Answered:
			style = theme.Disabled
		case i == m.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
