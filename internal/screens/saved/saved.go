// Package saved lists saved sessions and lets the user resume or discard
// them.
package saved

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/router"
	"github.com/abhisek/mcqprep/internal/screen"
	"github.com/abhisek/mcqprep/internal/screens/nav"
	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/ui/layout"
	"github.com/abhisek/mcqprep/internal/ui/theme"
)

type entriesLoadedMsg struct {
	Entries []progress.Entry
	Err     error
}

type clearedMsg struct {
	Source session.Source
	Err    error
}

// SavedScreen displays every saved session.
type SavedScreen struct {
	progress *progress.Store
	entries  []progress.Entry
	selected int
	expanded map[int]bool
	confirm  bool // a second d discards the selected entry
	loaded   bool
	errMsg   string
}

var (
	_ screen.Screen          = (*SavedScreen)(nil)
	_ screen.KeyHintProvider = (*SavedScreen)(nil)
	_ screen.Refresher       = (*SavedScreen)(nil)
)

// New creates a new SavedScreen.
func New(prog *progress.Store) *SavedScreen {
	return &SavedScreen{
		progress: prog,
		expanded: make(map[int]bool),
	}
}

func (s *SavedScreen) Init() tea.Cmd {
	return s.load()
}

func (s *SavedScreen) load() tea.Cmd {
	prog := s.progress
	return func() tea.Msg {
		entries, err := prog.List(context.Background())
		return entriesLoadedMsg{Entries: entries, Err: err}
	}
}

// Refresh reloads the list when a resumed session returns here.
func (s *SavedScreen) Refresh() tea.Cmd {
	return s.load()
}

func (s *SavedScreen) Title() string {
	return "Saved Sessions"
}

func (s *SavedScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Resume"},
		{Key: "Tab", Description: "Details"},
		{Key: "d", Description: "Discard"},
	}
	if s.confirm {
		hints[2] = layout.KeyHint{Key: "d", Description: "Confirm discard"}
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *SavedScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.entries = msg.Entries
		}
		s.loaded = true
		s.selected = min(s.selected, max(len(s.entries)-1, 0))
		return s, nil

	case clearedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.expanded = make(map[int]bool)
		return s, s.load()

	case tea.KeyPressMsg:
		key := msg.String()
		if key != "d" {
			s.confirm = false
		}
		switch key {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "tab":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "enter":
			if e, ok := s.current(); ok {
				src := e.Source
				return s, func() tea.Msg { return nav.ResumeMsg{Source: src} }
			}
		case "d":
			e, ok := s.current()
			if !ok {
				return s, nil
			}
			if !s.confirm {
				s.confirm = true
				return s, nil
			}
			s.confirm = false
			return s, s.clear(e.Source)
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SavedScreen) current() (progress.Entry, bool) {
	if s.selected < 0 || s.selected >= len(s.entries) {
		return progress.Entry{}, false
	}
	return s.entries[s.selected], true
}

func (s *SavedScreen) clear(src session.Source) tea.Cmd {
	prog := s.progress
	return func() tea.Msg {
		return clearedMsg{Source: src, Err: prog.ClearSource(context.Background(), src)}
	}
}

func (s *SavedScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading saved sessions...")
	}
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing saved. Progress is kept as you answer.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		var line string
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if e.Err != nil {
			line = fmt.Sprintf("%s%-18s  unreadable", prefix, e.Key)
			style = style.Foreground(theme.Error)
		} else {
			line = fmt.Sprintf("%s%-18s  %s answered  %s left", prefix,
				e.Source.DisplayName(), e.Label(),
				session.FormatRemaining(e.Snapshot.TimeRemainingSeconds))
		}
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail(e))))
			b.WriteString("\n")
		}
	}

	if s.confirm {
		if e, ok := s.current(); ok {
			b.WriteString("\n")
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Notice.Render("Press d again to discard "+e.Source.DisplayName())))
		}
	}

	return b.String()
}

// detail is the expanded line under an entry.
func detail(e progress.Entry) string {
	if e.Err != nil {
		return "    " + e.Err.Error()
	}
	snap := e.Snapshot
	return fmt.Sprintf("    at question %d of %d  ·  %d correct  ·  saved %s",
		e.Index+1, e.Total, snap.ScoreCorrect, snap.SavedAt.Local().Format("Jan 02, 15:04"))
}
