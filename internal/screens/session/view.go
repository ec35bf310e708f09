package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/ui/components"
	"github.com/abhisek/mcqprep/internal/ui/theme"
)

// renderQuestion renders the active question display.
func (s *SessionScreen) renderQuestion(width int) string {
	vm := s.vm
	inner := max(width-4, 20)

	var b strings.Builder

	// Position line.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", vm.Number(), vm.Total))
	infoRight := ""
	if vm.SourceModule != "" {
		infoRight = lipgloss.NewStyle().Foreground(theme.TextDim).Render(vm.SourceModule)
	}
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 && infoRight != "" {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	// Progress colored by running accuracy.
	label := "Accuracy  --"
	if vm.Live.Attempted > 0 {
		label = fmt.Sprintf("Accuracy %3.0f%%", vm.Live.Accuracy)
	}
	bar := components.NewProgressBar(label, vm.Live.ProgressPercent/100, true, inner-2).
		WithColor(theme.TierColor(string(vm.Live.Tier)))
	b.WriteString("  " + bar.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	b.WriteString("\n\n")

	// Question text.
	b.WriteString(lipgloss.NewStyle().
		Width(inner).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(vm.Question))
	b.WriteString("\n\n")

	mc := components.NewMultiChoice(choices(vm.Options), vm.Answered, inner)
	mc.Cursor = s.cursor
	b.WriteString(mc.View())

	if vm.Answered {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(inner))
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Notice.Render("  " + s.notice))
	}
	if vm.PersistError != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  Progress not saved: " + vm.PersistError.Error()))
	}

	return b.String()
}

// renderFeedback shows the verdict and the explanation once answered.
func (s *SessionScreen) renderFeedback(width int) string {
	vm := s.vm
	var verdict string
	if !anyWrong(vm.Options) {
		verdict = theme.Correct.Render("  Correct!")
	} else {
		verdict = theme.Incorrect.Render("  Incorrect.") +
			lipgloss.NewStyle().Foreground(theme.TextDim).
				Render(fmt.Sprintf("  The answer is %s.", vm.Options[correctIndex(vm.Options)].Key))
	}

	var body string
	switch {
	case vm.Explanation != "":
		body = lipgloss.NewStyle().
			Width(width - 4).
			Foreground(theme.Text).
			Render(vm.Explanation)
	case s.explaining:
		body = s.spinner.View() + theme.Hint.Render(" Generating explanation...")
	case vm.ExplanationAvailable:
		body = theme.Hint.Render("No explanation provided. Press E to generate one.")
	default:
		body = theme.Hint.Render("No explanation provided.")
	}

	card := theme.Card.Width(width - 2).Render(body)
	return verdict + "\n" + lipgloss.NewStyle().PaddingLeft(1).Render(card)
}

func choices(opts [4]quiz.OptionView) []components.Choice {
	out := make([]components.Choice, 0, len(opts))
	for _, o := range opts {
		c := components.Choice{Key: o.Key, Text: o.Text}
		switch o.Mark {
		case quiz.MarkCorrect:
			c.State = components.ChoiceCorrect
		case quiz.MarkWrong:
			c.State = components.ChoiceWrong
		}
		out = append(out, c)
	}
	return out
}

func correctIndex(opts [4]quiz.OptionView) int {
	for i, o := range opts {
		if o.Mark == quiz.MarkCorrect {
			return i
		}
	}
	return 0
}

func anyWrong(opts [4]quiz.OptionView) bool {
	for _, o := range opts {
		if o.Mark == quiz.MarkWrong {
			return true
		}
	}
	return false
}
