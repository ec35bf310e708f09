package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/router"
	"github.com/abhisek/mcqprep/internal/screen"
	"github.com/abhisek/mcqprep/internal/screens/summary"
	sess "github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/ui/layout"
	"github.com/abhisek/mcqprep/internal/ui/theme"
)

// explainTimeout bounds one explanation request from the UI.
const explainTimeout = 45 * time.Second

// SessionScreen implements screen.Screen for the active session.
type SessionScreen struct {
	ctrl       *quiz.Controller
	vm         quiz.ViewModel
	keys       keyMap
	cursor     int
	spinner    spinner.Model
	explaining bool
	notice     string
	closed     bool
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.StatusProvider  = (*SessionScreen)(nil)
	_ screen.Closer          = (*SessionScreen)(nil)
)

// New creates a screen over the controller's loaded session.
func New(ctrl *quiz.Controller) *SessionScreen {
	return &SessionScreen{
		ctrl:    ctrl,
		vm:      ctrl.View(),
		keys:    defaultKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Notice)),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	if s.ctrl.TimerActive() {
		return tickCmd(s.vm.SessionID)
	}
	return nil
}

func (s *SessionScreen) Title() string {
	return s.vm.SourceName
}

// Status shows the countdown and running score in the header.
func (s *SessionScreen) Status() string {
	return fmt.Sprintf("⏱ %s   ✓ %d/%d  ", s.vm.Remaining, s.vm.Score, s.vm.Total)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	k := s.keys
	k.Choose.SetEnabled(!s.vm.Answered)
	k.Enter.SetEnabled(!s.vm.Answered)
	k.Explain.SetEnabled(s.vm.ExplanationAvailable && !s.explaining)
	return layout.HintsFromBindings(k.Choose, k.Enter, k.Next, k.Explain, k.Save)
}

func tickCmd(sessionID string) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{SessionID: sessionID}
	})
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTick(msg)

	case explainDoneMsg:
		s.explaining = false
		s.ctrl.ApplyExplanations()
		s.vm = s.ctrl.View()
		if msg.Err != nil {
			s.notice = "Explanation unavailable: " + msg.Err.Error()
		}
		return s, nil

	case spinner.TickMsg:
		if !s.explaining {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	vm, err := s.ctrl.Dispatch(quiz.Tick{SessionID: msg.SessionID})
	if err != nil {
		return s, nil
	}
	s.vm = vm
	if vm.Phase == sess.PhaseFinished {
		return s.finish()
	}
	if msg.SessionID == s.ctrl.SessionID() && s.ctrl.TimerActive() {
		return s, tickCmd(msg.SessionID)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Choose):
		if i, ok := choiceIndex(msg.String()); ok {
			s.cursor = i
			return s.dispatch(quiz.SelectOption{Index: i})
		}
	case key.Matches(msg, s.keys.Up):
		s.cursor = max(0, s.cursor-1)
	case key.Matches(msg, s.keys.Down):
		s.cursor = min(len(s.vm.Options)-1, s.cursor+1)
	case key.Matches(msg, s.keys.Enter):
		if !s.vm.Answered {
			return s.dispatch(quiz.SelectOption{Index: s.cursor})
		}
		return s.dispatch(quiz.Advance{})
	case key.Matches(msg, s.keys.Next):
		return s.dispatch(quiz.Advance{})
	case key.Matches(msg, s.keys.Explain):
		return s.explain()
	case key.Matches(msg, s.keys.Save):
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SessionScreen) dispatch(ev quiz.Event) (screen.Screen, tea.Cmd) {
	prev := s.vm.Index
	vm, err := s.ctrl.Dispatch(ev)
	s.vm = vm
	switch {
	case errors.Is(err, sess.ErrInvalidChoice):
		s.notice = ""
	case err != nil:
		s.notice = err.Error()
	default:
		s.notice = ""
	}
	if vm.Index != prev {
		s.cursor = 0
	}
	if vm.Phase == sess.PhaseFinished {
		return s.finish()
	}
	return s, nil
}

func (s *SessionScreen) explain() (screen.Screen, tea.Cmd) {
	if s.explaining || !s.vm.ExplanationAvailable {
		return s, nil
	}
	job, err := s.ctrl.ExplainCurrent()
	if err != nil {
		s.notice = err.Error()
		return s, nil
	}
	s.explaining = true
	s.notice = ""
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), explainTimeout)
		defer cancel()
		_, err := job.Run(ctx)
		return explainDoneMsg{Number: job.Number, Err: err}
	}
	return s, tea.Batch(run, s.spinner.Tick)
}

// finish hands over to the summary screen. The session is already closed.
func (s *SessionScreen) finish() (screen.Screen, tea.Cmd) {
	s.closed = true
	next := summary.New(s.ctrl)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// Close saves a live session when the screen is popped or the program
// quits.
func (s *SessionScreen) Close() tea.Cmd {
	if s.closed || !s.ctrl.TimerActive() {
		return nil
	}
	s.closed = true
	vm, err := s.ctrl.Dispatch(quiz.SaveAndExitRequested{})
	s.vm = vm
	var notice screen.NoticeMsg
	switch {
	case err != nil:
		notice = screen.NoticeMsg{Text: "Could not leave session: " + err.Error(), Error: true}
	case vm.PersistError != nil:
		notice = screen.NoticeMsg{Text: "Progress not saved: " + vm.PersistError.Error(), Error: true}
	case vm.Saved:
		notice = screen.NoticeMsg{Text: fmt.Sprintf("%s saved at question %d of %d", vm.SourceName, vm.Number(), vm.Total)}
	case vm.Live.Attempted > 0:
		notice = screen.NoticeMsg{Text: vm.SourceName + " left; answers so far are saved"}
	default:
		notice = screen.NoticeMsg{Text: vm.SourceName + " left; nothing to save"}
	}
	return func() tea.Msg { return notice }
}

func (s *SessionScreen) View(width, height int) string {
	if s.vm.Phase != sess.PhaseActive {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\nNo session in progress.")
	}
	return s.renderQuestion(width)
}
