package session

import (
	"errors"
	"time"

	"github.com/abhisek/mcqprep/internal/question"
)

var (
	// ErrWrongPhase is returned when an operation is invoked in a phase that
	// does not allow it. The machine is left unchanged.
	ErrWrongPhase = errors.New("operation not allowed in current phase")

	// ErrInvalidChoice is returned for an option index outside 0..3.
	ErrInvalidChoice = errors.New("invalid option index")

	// ErrEmptySession is returned when starting with no questions.
	ErrEmptySession = errors.New("session has no questions")

	// ErrInvalidSnapshot is returned when a snapshot cannot be restored.
	ErrInvalidSnapshot = errors.New("invalid session snapshot")
)

// Phase is the lifecycle phase of the machine.
type Phase int

const (
	PhaseIdle      Phase = iota // No session loaded
	PhaseActive                 // Serving questions
	PhaseFinished               // Completed or timed out
	PhaseAbandoned              // Left via save-and-exit
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return "idle"
	}
}

// Item is a question paired with the user's answer state.
type Item struct {
	Question question.Question `json:"question"`

	// UserAnswer is set at most once; the first answer is final.
	UserAnswer *int `json:"userAnswer,omitempty"`

	// AnsweredAtDeltaSeconds is the time since the previous answer event
	// (or session start) when this item was answered.
	AnsweredAtDeltaSeconds float64 `json:"answeredAtDeltaSeconds,omitempty"`
}

// Attempted reports whether the item has been answered.
func (it Item) Attempted() bool { return it.UserAnswer != nil }

// Correct reports whether the recorded answer matches the correct index.
func (it Item) Correct() bool {
	return it.UserAnswer != nil && *it.UserAnswer == it.Question.CorrectIndex
}

func (it Item) clone() Item {
	if it.UserAnswer != nil {
		v := *it.UserAnswer
		it.UserAnswer = &v
	}
	opts := make([]question.Option, len(it.Question.Options))
	copy(opts, it.Question.Options)
	it.Question.Options = opts
	return it
}

// Session is the live state of one timed run.
type Session struct {
	// ID is a UUID assigned at start and kept across resume.
	ID string

	// Source is the logical session the items were drawn for.
	Source Source

	// Items are fixed at start.
	Items []Item

	// CurrentIndex points at the item being shown.
	CurrentIndex int

	// ScoreCorrect is recomputed over all items on every answer.
	ScoreCorrect int

	// TimeRemainingSeconds counts down once per tick.
	TimeRemainingSeconds int

	// StartedAt is when the session started or was resumed.
	StartedAt time.Time

	// TimedOut is set when the countdown forced the finish.
	TimedOut bool

	lastEventAt time.Time
}

// ItemCount returns the number of items in the session.
func (s *Session) ItemCount() int { return len(s.Items) }

// Current returns the item at CurrentIndex.
func (s *Session) Current() *Item {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Items) {
		return nil
	}
	return &s.Items[s.CurrentIndex]
}

// recomputeScore counts correct answers across the whole item list.
func (s *Session) recomputeScore() {
	n := 0
	for _, it := range s.Items {
		if it.Correct() {
			n++
		}
	}
	s.ScoreCorrect = n
}
