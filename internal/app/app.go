package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/question"
	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/router"
	"github.com/abhisek/mcqprep/internal/sampler"
	"github.com/abhisek/mcqprep/internal/screen"
	"github.com/abhisek/mcqprep/internal/screens/home"
	"github.com/abhisek/mcqprep/internal/screens/nav"
	sessionscreen "github.com/abhisek/mcqprep/internal/screens/session"
	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/ui/layout"
)

// Options wires the program to its controller and bank sources.
type Options struct {
	Controller *quiz.Controller
	Progress   *progress.Store
	Loader     bank.Loader
	Logger     *zap.Logger

	// Pools lists the pool ids loaded at startup. Nil loads every pool.
	Pools []string

	// Initial is sent once the program starts, e.g. to open a session
	// requested on the command line.
	Initial tea.Msg
}

// poolLoadedMsg carries the result of one background pool load.
type poolLoadedMsg struct {
	ID   string
	Seq  uint64
	Pool *question.Pool
	Err  error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx     context.Context
	ctrl    *quiz.Controller
	loader  bank.Loader
	log     *zap.Logger
	router  *router.Router
	loads   []tea.Cmd
	initial tea.Msg
	pending *nav.StartMsg
	width   int
	height  int
}

// newAppModel creates the model and registers the startup pool loads.
func newAppModel(ctx context.Context, opts Options) *AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &AppModel{
		ctx:     ctx,
		ctrl:    opts.Controller,
		loader:  opts.Loader,
		log:     logger.Named("app"),
		router:  router.New(home.New(opts.Controller, opts.Progress)),
		initial: opts.Initial,
	}

	ids := opts.Pools
	if ids == nil {
		ids = bank.AllPoolIDs()
	}
	for _, id := range ids {
		m.loads = append(m.loads, m.loadPool(id))
	}
	return m
}

// loadPool marks id as loading and returns the command that fetches it.
func (m *AppModel) loadPool(id string) tea.Cmd {
	seq := m.ctrl.BeginLoad(id)
	loader, ctx, logger := m.loader, m.ctx, m.log
	return func() tea.Msg {
		res, err := bank.LoadPool(ctx, loader, id, logger)
		msg := poolLoadedMsg{ID: id, Seq: seq, Err: err}
		if res != nil {
			msg.Pool = res.Pool
		}
		return msg
	}
}

func (m *AppModel) Init() tea.Cmd {
	cmds := append([]tea.Cmd{}, m.loads...)
	if m.initial != nil {
		initial := m.initial
		cmds = append(cmds, func() tea.Msg { return initial })
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case poolLoadedMsg:
		m.ctrl.CompleteLoad(msg.ID, msg.Seq, msg.Pool, msg.Err)
		cmd := m.router.Update(screen.PoolsChangedMsg{ID: msg.ID})
		if m.pending != nil {
			retry := *m.pending
			m.pending = nil
			return m, tea.Batch(cmd, m.start(retry))
		}
		return m, cmd

	case nav.StartMsg:
		return m, m.start(msg)

	case nav.ResumeMsg:
		return m, m.resume(msg)
	}

	return m, m.router.Update(msg)
}

// start begins a session and shows it. With Wait set, a request against
// pools still loading is retried after the next load completes.
func (m *AppModel) start(msg nav.StartMsg) tea.Cmd {
	if msg.Replace {
		if _, err := m.ctrl.Dispatch(quiz.RestartRequested{}); err != nil {
			return notice(err.Error(), true)
		}
	}
	if msg.Wait && m.mixedLoading(msg.Request.Source) {
		m.pending = &msg
		return nil
	}
	_, err := m.ctrl.Start(msg.Request)
	if err != nil {
		if msg.Wait && errors.Is(err, quiz.ErrPoolNotReady) {
			m.pending = &msg
			return nil
		}
		if msg.Replace {
			return tea.Sequence(
				func() tea.Msg { return router.PopScreenMsg{} },
				notice(startError(msg.Request.Source, err), true),
			)
		}
		return notice(startError(msg.Request.Source, err), true)
	}
	return m.show(msg.Replace)
}

// mixedLoading reports whether src is mixed and some module pool has not
// finished loading.
func (m *AppModel) mixedLoading(src session.Source) bool {
	if src != session.SourceMixed {
		return false
	}
	for _, id := range bank.ModulePoolIDs {
		if m.ctrl.Pools().Status(id) == quiz.PoolLoading {
			return true
		}
	}
	return false
}

func (m *AppModel) resume(msg nav.ResumeMsg) tea.Cmd {
	var err error
	if msg.Source == "" {
		_, err = m.ctrl.Dispatch(quiz.ResumeLast{})
	} else {
		_, err = m.ctrl.Dispatch(quiz.ResumeRequested{Source: msg.Source})
	}
	if err != nil {
		text := "No saved session to resume"
		if msg.Source != "" {
			text = "No saved session for " + msg.Source.DisplayName()
		}
		if !errors.Is(err, progress.ErrNoSavedSession) && !errors.Is(err, session.ErrInvalidSnapshot) {
			text = "Resume failed: " + err.Error()
		}
		return notice(text, true)
	}
	return m.show(false)
}

func (m *AppModel) show(replace bool) tea.Cmd {
	s := sessionscreen.New(m.ctrl)
	if replace {
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: s} }
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func notice(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return screen.NoticeMsg{Text: text, Error: isErr} }
}

// startError turns a start failure into a line for the home screen.
func startError(src session.Source, err error) string {
	name := src.DisplayName()
	switch {
	case errors.Is(err, quiz.ErrPoolNotReady):
		return name + " is still loading"
	case errors.Is(err, bank.ErrSourceUnavailable):
		return name + " is unavailable: the question bank could not be loaded"
	case errors.Is(err, sampler.ErrNoValidQuestions):
		return name + " has no valid questions"
	case errors.Is(err, session.ErrWrongPhase):
		return "Finish or leave the current session first"
	}
	return fmt.Sprintf("Could not start %s: %v", name, err)
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var hints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(ctx, opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
