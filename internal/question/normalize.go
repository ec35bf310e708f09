package question

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Reason classifies why a record could not be admitted into a pool.
type Reason string

const (
	ReasonMissingText     Reason = "missing question text"
	ReasonExplanatoryText Reason = "explanatory text, not a question"
	ReasonAmbiguousAnswer Reason = "ambiguous answer"
)

// NormalizationError reports a record that was dropped during normalization.
type NormalizationError struct {
	Index  int // position in the source document, -1 if unknown
	ID     string
	Reason Reason
}

func (e *NormalizationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("question %s: %s", e.ID, e.Reason)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("question #%d: %s", e.Index+1, e.Reason)
	}
	return "question: " + string(e.Reason)
}

// HasReason reports whether err is a NormalizationError with the given reason.
func HasReason(err error, reason Reason) bool {
	var ne *NormalizationError
	return errors.As(err, &ne) && ne.Reason == reason
}

// Normalize converts a raw record into the canonical Question shape.
func Normalize(raw RawQuestion) (Question, error) {
	fail := func(reason Reason) (Question, error) {
		return Question{}, &NormalizationError{Index: -1, ID: raw.ID, Reason: reason}
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return fail(ReasonMissingText)
	}
	if LooksLikeExplanation(text) {
		return fail(ReasonExplanatoryText)
	}

	options := normalizeOptions(raw.Options)
	idx, ok := resolveAnswer(raw, options)
	if !ok {
		return fail(ReasonAmbiguousAnswer)
	}

	return Question{
		ID:           raw.ID,
		Text:         text,
		Options:      options,
		CorrectIndex: idx,
		Explanation:  strings.TrimSpace(raw.Explanation),
		Module:       raw.Module,
	}, nil
}

// normalizeOptions yields exactly OptionCount options, truncating extras and
// padding with positional placeholders.
func normalizeOptions(raws []RawOption) []Option {
	if len(raws) > OptionCount {
		raws = raws[:OptionCount]
	}
	out := make([]Option, 0, OptionCount)
	for i, ro := range raws {
		opt := Option{ID: ro.ID, Text: ro.Text, Origin: OriginSource}
		if opt.ID == "" {
			opt.ID = ro.FallbackID
		}
		if opt.ID == "" {
			opt.ID = fmt.Sprintf("option%d", i+1)
		}
		if opt.Text == "" {
			opt.Text = placeholderText(i)
			opt.Origin = OriginFilled
		}
		out = append(out, opt)
	}
	for len(out) < OptionCount {
		n := len(out)
		out = append(out, Option{
			ID:     fmt.Sprintf("option%d", n+1),
			Text:   placeholderText(n),
			Origin: OriginPadded,
		})
	}
	return out
}

func placeholderText(i int) string {
	return fmt.Sprintf("Option %d", i+1)
}

// resolveAnswer tries the numeric answer, then an id match, then the stored
// answerIndex. The first in-range candidate wins.
func resolveAnswer(raw RawQuestion, options []Option) (int, bool) {
	inRange := func(i int) bool { return i >= 0 && i < len(options) }

	switch raw.Answer.Kind {
	case AnswerIndex:
		if inRange(raw.Answer.Index) {
			return raw.Answer.Index, true
		}
	case AnswerID:
		for i, o := range options {
			if o.Origin != OriginPadded && o.ID == raw.Answer.ID {
				return i, true
			}
		}
	}
	if raw.AnswerIndex != nil && inRange(*raw.AnswerIndex) {
		return *raw.AnswerIndex, true
	}
	return -1, false
}

// NormalizePool normalizes a whole document. Records that fail are dropped
// and reported; survivors are ordered by id.
func NormalizePool(id, name string, raws []RawQuestion) (*Pool, []*NormalizationError) {
	pool := &Pool{ID: id, Name: name}
	var drops []*NormalizationError
	for i, raw := range raws {
		if raw.ID == "" {
			raw.ID = strconv.Itoa(i + 1)
		}
		q, err := Normalize(raw)
		if err != nil {
			var ne *NormalizationError
			if errors.As(err, &ne) {
				ne.Index = i
				drops = append(drops, ne)
			}
			continue
		}
		pool.Questions = append(pool.Questions, q)
	}
	sortByID(pool.Questions)
	return pool, drops
}

// sortByID orders numeric ids numerically ahead of non-numeric ids, which
// are ordered lexically.
func sortByID(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		a, aOK := numericID(qs[i].ID)
		b, bOK := numericID(qs[j].ID)
		switch {
		case aOK && bOK:
			return a < b
		case aOK:
			return true
		case bOK:
			return false
		default:
			return qs[i].ID < qs[j].ID
		}
	})
}

// numericID parses a finite number. NaN and the infinities sort as text so
// the ordering stays strict.
func numericID(id string) (float64, bool) {
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
