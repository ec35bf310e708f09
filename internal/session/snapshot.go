package session

import (
	"fmt"
	"time"

	"github.com/abhisek/mcqprep/internal/question"
)

// Snapshot is the durable form of a session. Every field round-trips
// through JSON unchanged.
type Snapshot struct {
	SourceKind           Source    `json:"sourceKind"`
	SessionID            string    `json:"sessionId,omitempty"`
	Items                []Item    `json:"items"`
	CurrentIndex         int       `json:"currentIndex"`
	ScoreCorrect         int       `json:"scoreCorrect"`
	TimeRemainingSeconds int       `json:"timeRemainingSeconds"`
	ItemCount            int       `json:"itemCount"`
	SavedAt              time.Time `json:"savedAt"`
}

func newSnapshot(s *Session, now time.Time) *Snapshot {
	items := make([]Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.clone()
	}
	return &Snapshot{
		SourceKind:           s.Source,
		SessionID:            s.ID,
		Items:                items,
		CurrentIndex:         s.CurrentIndex,
		ScoreCorrect:         s.ScoreCorrect,
		TimeRemainingSeconds: s.TimeRemainingSeconds,
		ItemCount:            len(items),
		SavedAt:              now.UTC(),
	}
}

// Attempted returns the number of answered items.
func (s *Snapshot) Attempted() int {
	n := 0
	for _, it := range s.Items {
		if it.Attempted() {
			n++
		}
	}
	return n
}

// Validate checks that the snapshot can be resumed.
func (s *Snapshot) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
	}
	if s == nil {
		return invalid("missing")
	}
	if !s.SourceKind.Valid() {
		return invalid("unknown source %q", s.SourceKind)
	}
	if len(s.Items) == 0 {
		return invalid("no items")
	}
	if s.ItemCount != len(s.Items) {
		return invalid("itemCount %d does not match %d items", s.ItemCount, len(s.Items))
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Items) {
		return invalid("currentIndex %d out of range", s.CurrentIndex)
	}
	if s.TimeRemainingSeconds < 0 {
		return invalid("negative time remaining")
	}
	for i, it := range s.Items {
		if !it.Question.Valid() {
			return invalid("item %d is not a valid question", i)
		}
		if it.UserAnswer != nil && (*it.UserAnswer < 0 || *it.UserAnswer >= question.OptionCount) {
			return invalid("item %d answer %d out of range", i, *it.UserAnswer)
		}
	}
	return nil
}
