package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/router"
	"github.com/abhisek/mcqprep/internal/screen"
	"github.com/abhisek/mcqprep/internal/screens/nav"
	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/ui/layout"
	"github.com/abhisek/mcqprep/internal/ui/theme"
)

const explainTimeout = 45 * time.Second

// explainDoneMsg reports one finished review explanation.
type explainDoneMsg struct {
	Number int
	Err    error
}

// SummaryScreen displays the end-of-session analytics and the review list
// of incorrect and skipped questions.
type SummaryScreen struct {
	ctrl     *quiz.Controller
	summary  *session.Summary
	keys     keyMap
	viewport viewport.Model
	spinner  spinner.Model
	pending  int
	failed   int
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
)

// New creates a summary screen for the controller's finished session.
func New(ctrl *quiz.Controller) *SummaryScreen {
	vp := viewport.New()
	vp.SoftWrap = true
	return &SummaryScreen{
		ctrl:     ctrl,
		summary:  ctrl.View().Summary,
		keys:     defaultKeyMap(),
		viewport: vp,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Notice)),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	k := s.keys
	k.Explain.SetEnabled(s.missingExplanations() > 0 && s.pending == 0)
	return layout.HintsFromBindings(k.Scroll, k.Explain, k.Restart, k.Done)
}

// missingExplanations counts review entries without an explanation when
// they can be generated.
func (s *SummaryScreen) missingExplanations() int {
	if s.summary == nil || !s.ctrl.ExplanationsEnabled() {
		return 0
	}
	n := 0
	for _, e := range s.summary.Review {
		if e.Explanation == "" {
			n++
		}
	}
	return n
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explainDoneMsg:
		s.pending--
		if msg.Err != nil {
			s.failed++
		}
		s.ctrl.ApplyExplanations()
		s.summary = s.ctrl.View().Summary
		return s, nil

	case spinner.TickMsg:
		if s.pending == 0 {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, s.keys.Done):
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case key.Matches(msg, s.keys.Restart):
			if s.summary == nil {
				return s, nil
			}
			req := nav.StartMsg{Request: quiz.StartRequest{Source: s.summary.Source}, Replace: true}
			return s, func() tea.Msg { return req }
		case key.Matches(msg, s.keys.Explain):
			return s, s.explainMissed()
		}
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}
	return s, nil
}

// explainMissed requests explanations for every review entry without one.
func (s *SummaryScreen) explainMissed() tea.Cmd {
	if s.pending > 0 || s.missingExplanations() == 0 {
		return nil
	}
	s.failed = 0
	var cmds []tea.Cmd
	for _, e := range s.summary.Review {
		if e.Explanation != "" {
			continue
		}
		job, err := s.ctrl.ExplainJobFor(e.Number)
		if err != nil {
			continue
		}
		s.pending++
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), explainTimeout)
			defer cancel()
			_, err := job.Run(ctx)
			return explainDoneMsg{Number: job.Number, Err: err}
		})
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(append(cmds, s.spinner.Tick)...)
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	head := s.renderStats(width)
	s.viewport.SetWidth(max(width-4, 20))
	s.viewport.SetHeight(max(height-lipgloss.Height(head)-1, 3))
	s.viewport.SetContent(s.renderReview(max(width-6, 20)))

	return head + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(s.viewport.View())
}

func (s *SummaryScreen) renderStats(width int) string {
	sum := s.summary
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	title := "Session complete"
	if sum.TimedOut {
		title = "Time is up"
	}
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(title + " · " + sum.Source.DisplayName()))
	b.WriteString("\n\n")

	verdict := theme.Correct.Render(fmt.Sprintf("PASS  %.0f%%", sum.OverallScore))
	if !sum.Passed {
		verdict = theme.Incorrect.Render(fmt.Sprintf("FAIL  %.0f%%", sum.OverallScore))
	}
	b.WriteString(center.Render(verdict + theme.Hint.Render(fmt.Sprintf("   (pass mark %.0f%%)", session.PassThreshold))))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Correct: %d/%d    Attempted: %d    Skipped: %d    Accuracy: %.0f%%    Avg time: %.1fs",
		sum.ScoreCorrect, sum.ItemCount, sum.Attempted, sum.Skipped, sum.AccuracyOfAttempted, sum.AverageResponseSeconds)
	b.WriteString(center.Foreground(theme.Text).Render(stats))
	b.WriteString("\n\n")

	label := fmt.Sprintf("Review (%d)", len(sum.Review))
	switch {
	case s.pending > 0:
		label += "  " + s.spinner.View() + theme.Hint.Render(fmt.Sprintf("explaining %d...", s.pending))
	case s.failed > 0:
		label += "  " + theme.Notice.Render(fmt.Sprintf("%d explanation(s) unavailable", s.failed))
	}
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Foreground(theme.TextDim).Render(label))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Foreground(theme.Border).Render(strings.Repeat("─", max(width-6, 10))))
	return b.String()
}

func (s *SummaryScreen) renderReview(width int) string {
	sum := s.summary
	if len(sum.Review) == 0 {
		return theme.Correct.Render("Every question answered correctly.")
	}

	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for _, e := range sum.Review {
		head := fmt.Sprintf("Q%d. %s", e.Number, e.Question)
		if e.SourceModule != "" {
			head += theme.Hint.Render("  [" + e.SourceModule + "]")
		}
		b.WriteString(wrap.Foreground(theme.Text).Bold(true).Render(head))
		b.WriteString("\n")
		if e.Skipped {
			b.WriteString(theme.Notice.Render("   Skipped"))
		} else {
			b.WriteString(theme.Incorrect.Render("   Your answer: " + e.UserAnswer))
		}
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("   Correct answer: " + e.CorrectAnswer))
		b.WriteString("\n")
		if e.Explanation != "" {
			b.WriteString(wrap.PaddingLeft(3).Foreground(theme.TextDim).Render(e.Explanation))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
