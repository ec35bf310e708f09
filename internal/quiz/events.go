package quiz

import "github.com/abhisek/mcqprep/internal/session"

// Event is an input accepted by Controller.Dispatch.
type Event interface {
	event()
}

// SelectOption answers the current question with option Index (0-3).
type SelectOption struct{ Index int }

// Advance moves to the next question.
type Advance struct{}

// Tick is one second of countdown for the session SessionID. Ticks for any
// other session are ignored.
type Tick struct{ SessionID string }

// ResumeRequested resumes the saved session for Source.
type ResumeRequested struct{ Source session.Source }

// ResumeLast resumes the most recently saved session of any source.
type ResumeLast struct{}

// SaveAndExitRequested abandons the live session, saving it when past the
// first question.
type SaveAndExitRequested struct{}

// RestartRequested leaves the summary or abandoned state for idle.
type RestartRequested struct{}

func (SelectOption) event()         {}
func (Advance) event()              {}
func (Tick) event()                 {}
func (ResumeRequested) event()      {}
func (ResumeLast) event()           {}
func (SaveAndExitRequested) event() {}
func (RestartRequested) event()     {}
