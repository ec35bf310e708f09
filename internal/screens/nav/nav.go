// Package nav holds the navigation requests screens send to the app,
// which owns the controller calls that start or resume a session.
package nav

import (
	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/session"
)

// StartMsg asks the app to start a session and show it.
type StartMsg struct {
	Request quiz.StartRequest

	// Replace swaps the requesting screen for the session instead of
	// pushing on top of it.
	Replace bool

	// Wait retries once pools finish loading instead of failing with
	// quiz.ErrPoolNotReady.
	Wait bool
}

// ResumeMsg asks the app to resume a saved session. An empty Source
// resumes the most recent one.
type ResumeMsg struct {
	Source session.Source
}
