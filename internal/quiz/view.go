package quiz

import (
	"github.com/abhisek/mcqprep/internal/question"
	"github.com/abhisek/mcqprep/internal/session"
)

// Mark is the feedback state of one option.
type Mark int

const (
	MarkNone Mark = iota
	MarkCorrect
	MarkWrong
)

// OptionView is one rendered option.
type OptionView struct {
	Key  string // "A".."D"
	Text string
	Mark Mark
}

// OptionKeys are the display letters of the four options.
var OptionKeys = [question.OptionCount]string{"A", "B", "C", "D"}

// ViewModel is a read-only projection of the controller state for the
// presentation layer.
type ViewModel struct {
	Phase      session.Phase
	Source     session.Source
	SourceName string
	SessionID  string

	Question     string
	SourceModule string
	Options      [question.OptionCount]OptionView
	Answered     bool
	Explanation  string

	// ExplanationAvailable is set when the question has no explanation
	// but one can be generated.
	ExplanationAvailable bool

	Index            int // 0-based
	Total            int
	Score            int
	RemainingSeconds int
	Remaining        string // HH:MM:SS
	Live             session.Live

	Summary *session.Summary // set once finished

	// Saved reports whether the last save-and-exit wrote a snapshot.
	Saved bool

	// PersistError is the last failed snapshot write, if any. The session
	// continues in memory.
	PersistError error
}

// Number is the 1-based question number.
func (v ViewModel) Number() int { return v.Index + 1 }

func (c *Controller) buildView() ViewModel {
	vm := ViewModel{
		Phase:        c.machine.Phase(),
		Saved:        c.saved,
		PersistError: c.machine.LastPersistError(),
	}
	s := c.machine.Session()
	if s == nil {
		return vm
	}

	vm.Source = s.Source
	vm.SourceName = s.Source.DisplayName()
	vm.SessionID = s.ID
	vm.Total = s.ItemCount()
	vm.Score = s.ScoreCorrect
	vm.RemainingSeconds = s.TimeRemainingSeconds
	vm.Remaining = session.FormatRemaining(s.TimeRemainingSeconds)
	vm.Live = session.LiveStats(s)
	vm.Index = s.CurrentIndex

	if vm.Phase == session.PhaseFinished {
		vm.Summary = c.summary
	}

	it := s.Current()
	if it == nil {
		return vm
	}
	q := it.Question
	vm.Question = q.Text
	vm.SourceModule = q.SourceModule
	for i, o := range q.Options {
		if i >= question.OptionCount {
			break
		}
		vm.Options[i] = OptionView{Key: OptionKeys[i], Text: o.Text}
	}

	if it.Attempted() {
		vm.Answered = true
		vm.Options[q.CorrectIndex].Mark = MarkCorrect
		if chosen := *it.UserAnswer; chosen != q.CorrectIndex {
			vm.Options[chosen].Mark = MarkWrong
		}
		vm.Explanation = c.explanationFor(q)
		vm.ExplanationAvailable = vm.Explanation == "" && c.explainer != nil && c.explainer.Enabled()
	}
	return vm
}

func (c *Controller) explanationFor(q question.Question) string {
	if q.Explanation != "" {
		return q.Explanation
	}
	if c.explainer == nil {
		return ""
	}
	text, _ := c.explainer.Cached(q)
	return text
}
