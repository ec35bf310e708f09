package home

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/router"
	"github.com/abhisek/mcqprep/internal/screen"
	"github.com/abhisek/mcqprep/internal/screens/nav"
	"github.com/abhisek/mcqprep/internal/screens/saved"
	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/ui/components"
	"github.com/abhisek/mcqprep/internal/ui/layout"
)

// HomeScreen lists every session source with its bank status and any
// saved progress.
type HomeScreen struct {
	ctrl      *quiz.Controller
	progress  *progress.Store
	keys      keyMap
	menu      components.Menu
	sources   []session.Source // menu index to source, "" for other items
	saved     map[session.Source]progress.Entry
	prompt    *countPrompt
	notice    string
	noticeErr bool
}

// countPrompt asks for the size of a mixed or review session.
type countPrompt struct {
	source session.Source
	input  components.CountInput
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ screen.Refresher       = (*HomeScreen)(nil)
)

// New creates the home screen. progress may be nil when persistence is
// disabled.
func New(ctrl *quiz.Controller, prog *progress.Store) *HomeScreen {
	h := &HomeScreen{
		ctrl:     ctrl,
		progress: prog,
		keys:     defaultKeyMap(),
	}
	h.loadSaved()
	h.rebuild()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.prompt != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	k := h.keys
	_, ok := h.savedAt(h.menu.Selected)
	k.Resume.SetEnabled(ok)
	return layout.HintsFromBindings(k.Navigate, k.Start, k.Resume, k.Quit)
}

// Refresh reloads saved progress after returning from a session.
func (h *HomeScreen) Refresh() tea.Cmd {
	h.loadSaved()
	h.rebuild()
	return nil
}

func (h *HomeScreen) loadSaved() {
	h.saved = make(map[session.Source]progress.Entry)
	if h.progress == nil {
		return
	}
	entries, err := h.progress.List(context.Background())
	if err != nil {
		h.setNotice("Could not read saved progress: "+err.Error(), true)
		return
	}
	for _, e := range entries {
		if e.Err == nil && e.Source.Valid() {
			h.saved[e.Source] = e
		}
	}
}

func (h *HomeScreen) setNotice(text string, isErr bool) {
	h.notice = text
	h.noticeErr = isErr
}

// rebuild regenerates the menu from pool status and saved progress.
func (h *HomeScreen) rebuild() {
	var items []components.MenuItem
	h.sources = h.sources[:0]
	for _, src := range session.AllSources() {
		items = append(items, components.MenuItem{
			Label:  src.DisplayName(),
			Detail: h.detail(src),
			Action: h.startAction(src),
		})
		h.sources = append(h.sources, src)
	}

	items = append(items,
		components.MenuItem{
			Label:    "Resume last session",
			Action:   func() tea.Cmd { return func() tea.Msg { return nav.ResumeMsg{} } },
			Disabled: len(h.saved) == 0,
		},
		components.MenuItem{
			Label:  "Saved sessions",
			Detail: savedDetail(len(h.saved)),
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: saved.New(h.progress)} }
			},
			Disabled: h.progress == nil,
		},
		components.MenuItem{
			Label:  "Quit",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)
	h.sources = append(h.sources, "", "", "")
	h.menu.SetItems(items)
}

func (h *HomeScreen) startAction(src session.Source) func() tea.Cmd {
	if src.Kind() == session.KindModule {
		return func() tea.Cmd {
			return startCmd(quiz.StartRequest{Source: src})
		}
	}
	return func() tea.Cmd {
		def := h.ctrl.Config().MixedCount
		if src.Kind() == session.KindReview {
			def = h.ctrl.Config().ReviewCount.N
		}
		h.prompt = &countPrompt{
			source: src,
			input:  components.NewCountInput("Questions", fmt.Sprintf("%d (0 = all)", def)),
		}
		return h.prompt.input.Init()
	}
}

func savedDetail(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", n)
}

func startCmd(req quiz.StartRequest) tea.Cmd {
	return func() tea.Msg { return nav.StartMsg{Request: req} }
}

// detail describes a source's bank status, size and saved progress.
func (h *HomeScreen) detail(src session.Source) string {
	var parts []string
	switch src.Kind() {
	case session.KindMixed:
		ready, loading := 0, 0
		for _, id := range bank.ModulePoolIDs {
			switch h.ctrl.Pools().Status(id) {
			case quiz.PoolReady:
				ready++
			case quiz.PoolLoading:
				loading++
			}
		}
		switch {
		case ready == 0 && loading > 0:
			parts = append(parts, "loading…")
		case ready == 0:
			parts = append(parts, "unavailable")
		default:
			n := h.ctrl.Config().MixedCount
			parts = append(parts, fmt.Sprintf("%d questions from %d modules · %s", n, ready, session.DurationLabel(n)))
		}
	default:
		id := string(src)
		if src.Kind() == session.KindReview {
			id = bank.ReviewPoolID
		}
		switch h.ctrl.Pools().Status(id) {
		case quiz.PoolReady:
			n := h.ctrl.Pools().Len(id)
			if src.Kind() == session.KindReview {
				if c := h.ctrl.Config().ReviewCount; !c.IsAll() {
					n = min(n, c.N)
				}
			}
			parts = append(parts, fmt.Sprintf("%d questions · %s", n, session.DurationLabel(n)))
		case quiz.PoolLoading:
			parts = append(parts, "loading…")
		default:
			parts = append(parts, "unavailable")
		}
	}
	if e, ok := h.saved[src]; ok {
		parts = append(parts, "saved "+e.Label())
	}
	return strings.Join(parts, " · ")
}

func (h *HomeScreen) savedAt(index int) (progress.Entry, bool) {
	if index < 0 || index >= len(h.sources) || h.sources[index] == "" {
		return progress.Entry{}, false
	}
	e, ok := h.saved[h.sources[index]]
	return e, ok
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.NoticeMsg:
		h.setNotice(msg.Text, msg.Error)
		return h, h.Refresh()

	case screen.PoolsChangedMsg:
		h.rebuild()
		return h, nil

	case tea.KeyPressMsg:
		if h.prompt != nil {
			return h.updatePrompt(msg)
		}
		switch {
		case key.Matches(msg, h.keys.Resume):
			if e, ok := h.savedAt(h.menu.Selected); ok {
				src := e.Source
				return h, func() tea.Msg { return nav.ResumeMsg{Source: src} }
			}
			return h, nil
		case key.Matches(msg, h.keys.Quit):
			return h, tea.Quit
		}
		h.notice = ""
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}

	if h.prompt != nil {
		var cmd tea.Cmd
		h.prompt.input, cmd = h.prompt.input.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) updatePrompt(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.prompt = nil
		return h, nil
	case "enter":
		req := quiz.StartRequest{Source: h.prompt.source}
		if n, ok := h.prompt.input.Count(); ok {
			req.Count = quiz.Limit(n)
		}
		h.prompt = nil
		return h, startCmd(req)
	}
	var cmd tea.Cmd
	h.prompt.input, cmd = h.prompt.input.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)

	ready := 0
	for _, id := range bank.AllPoolIDs() {
		if h.ctrl.Pools().Status(id) == quiz.PoolReady {
			ready++
		}
	}

	sections := []string{
		renderTitle(cw),
		renderStatsBar(ready, len(bank.AllPoolIDs()), len(h.saved), cw),
		h.menu.View(),
	}
	if h.prompt != nil {
		sections = append(sections, divider(cw), fmt.Sprintf("%s\n  %s", h.prompt.source.DisplayName(), h.prompt.input.View()))
	}
	if h.notice != "" {
		sections = append(sections, renderNotice(h.notice, h.noticeErr, cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}
