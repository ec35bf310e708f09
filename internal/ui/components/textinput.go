package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/ui/theme"
)

// CountInput is a digits-only prompt for a question count. An empty value
// means the caller's default.
type CountInput struct {
	Model textinput.Model
	Label string
}

// NewCountInput creates a focused count prompt.
func NewCountInput(label, placeholder string) CountInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4
	ti.Focus()
	return CountInput{Model: ti, Label: label}
}

// Init starts the cursor blinking.
func (c CountInput) Init() tea.Cmd {
	return c.Model.Focus()
}

// Update drops non-digit runes and forwards the rest.
func (c CountInput) Update(msg tea.Msg) (CountInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		k := kmsg.String()
		if len(k) == 1 && (k[0] < '0' || k[0] > '9') {
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the label and the input.
func (c CountInput) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Label)
	return label + "  " + c.Model.View()
}

// Count returns the entered number. ok is false when the field is blank.
func (c CountInput) Count() (n int, ok bool) {
	v := strings.TrimSpace(c.Model.Value())
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
