package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mcqprep/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show live status, such as
// a countdown, on the right of the header.
type StatusProvider interface {
	Status() string
}

// Closer is implemented by screens that must settle state before they are
// popped or the program quits.
type Closer interface {
	Close() tea.Cmd
}

// Refresher is implemented by screens that reload state when they become
// the active screen again.
type Refresher interface {
	Refresh() tea.Cmd
}

// NoticeMsg carries a one-line message for whichever screen is active.
type NoticeMsg struct {
	Text  string
	Error bool
}

// PoolsChangedMsg is broadcast after a question pool finishes loading.
type PoolsChangedMsg struct {
	ID string
}
