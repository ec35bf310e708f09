package question

// OptionCount is the number of options every canonical question carries.
const OptionCount = 4

// OptionOrigin records where an option's text came from.
type OptionOrigin string

const (
	OriginSource OptionOrigin = "source" // text supplied by the bank
	OriginFilled OptionOrigin = "filled" // bank supplied the option but no usable text
	OriginPadded OptionOrigin = "padded" // bank supplied fewer than four options
)

// Option is a single answer choice.
type Option struct {
	ID     string       `json:"id"`
	Text   string       `json:"text"`
	Origin OptionOrigin `json:"origin,omitempty"`
}

// Question is the canonical shape every bank record is normalized into.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []Option `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`

	// SourceModule is set when the question was drawn into a mixed session.
	SourceModule string `json:"sourceModule,omitempty"`

	// Module is the exam module a review-bank question belongs to (0 if untagged).
	Module int `json:"module,omitempty"`
}

// CorrectOption returns the option holding the correct answer.
func (q Question) CorrectOption() Option {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return Option{}
	}
	return q.Options[q.CorrectIndex]
}

// OptionTexts returns the display strings of all options.
func (q Question) OptionTexts() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Text
	}
	return out
}

// StructurallyValid reports whether the bank supplied at least one option and
// every supplied option carried usable text.
func (q Question) StructurallyValid() bool {
	supplied := 0
	for _, o := range q.Options {
		switch o.Origin {
		case OriginPadded:
			continue
		case OriginFilled:
			return false
		}
		if o.Text == "" {
			return false
		}
		supplied++
	}
	return supplied > 0
}

// Valid reports whether the question satisfies the canonical invariants.
func (q Question) Valid() bool {
	if q.Text == "" || len(q.Options) != OptionCount {
		return false
	}
	for _, o := range q.Options {
		if o.Text == "" {
			return false
		}
	}
	return q.CorrectIndex >= 0 && q.CorrectIndex < OptionCount
}

// Pool is a named, ordered collection of canonical questions from one source.
// Pools are replaced wholesale on reload, never mutated.
type Pool struct {
	ID        string
	Name      string
	Questions []Question
}

// Len returns the number of questions in the pool.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Questions)
}

// Clone returns a copy of the pool's questions that callers may reorder.
func (p *Pool) Clone() []Question {
	if p == nil {
		return nil
	}
	out := make([]Question, len(p.Questions))
	copy(out, p.Questions)
	return out
}
