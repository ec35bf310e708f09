package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OptionSource tags which raw representation the options were read from.
type OptionSource int

const (
	OptionsNone     OptionSource = iota // no options found
	OptionsList                         // explicit "options" array
	OptionsNumbered                     // "option1".."option4" fields
	OptionsLettered                     // "A".."D" fields
)

func (s OptionSource) String() string {
	switch s {
	case OptionsList:
		return "list"
	case OptionsNumbered:
		return "numbered"
	case OptionsLettered:
		return "lettered"
	default:
		return "none"
	}
}

// AnswerKind tags how the raw record keys its correct answer.
type AnswerKind int

const (
	AnswerNone  AnswerKind = iota
	AnswerIndex            // numeric "answer": a 0-based option index
	AnswerID               // string "answer": an option id
)

// AnswerKey is the raw answer reference before resolution.
type AnswerKey struct {
	Kind  AnswerKind
	Index int
	ID    string
}

// RawOption is one option entry as the bank supplied it.
type RawOption struct {
	// ID is the id the bank gave the option, empty when it gave none.
	ID string
	// FallbackID is the positional id used when ID is empty.
	FallbackID string
	// Text is empty when the entry carried no usable text.
	Text string
}

// RawQuestion is a bank record resolved into a tagged union of the supported
// source formats. Only the normalizer looks inside it.
type RawQuestion struct {
	ID           string
	Text         string
	Module       int
	Explanation  string
	OptionSource OptionSource
	Options      []RawOption
	Answer       AnswerKey

	// AnswerIndex is a previously resolved index, used as the last fallback.
	AnswerIndex *int
}

var letterKeys = [...]string{"A", "B", "C", "D"}

// UnmarshalJSON decodes any of the supported record shapes.
func (r *RawQuestion) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("question record: %w", err)
	}

	*r = RawQuestion{}
	r.ID = scalarString(fields["id"])
	r.Text = scalarString(fields["question"])
	if r.Text == "" {
		r.Text = scalarString(fields["text"])
	}
	if n, ok := intValue(fields["module"]); ok {
		r.Module = n
	}
	r.Explanation = explanationText(fields["explanation"])

	r.readOptions(fields)

	answer := fields["answer"]
	if isEmpty(answer) {
		answer = fields["correctAnswer"]
	}
	r.Answer = answerKey(answer)
	if n, ok := intValue(fields["answerIndex"]); ok {
		r.AnswerIndex = &n
	}
	return nil
}

func (r *RawQuestion) readOptions(fields map[string]json.RawMessage) {
	var list []json.RawMessage
	if raw, ok := fields["options"]; ok && json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		r.OptionSource = OptionsList
		for i, item := range list {
			r.Options = append(r.Options, rawOption(item, fmt.Sprintf("option%d", i+1)))
		}
		return
	}

	for i := 1; i <= OptionCount; i++ {
		key := fmt.Sprintf("option%d", i)
		if raw, ok := fields[key]; ok && !isEmpty(raw) {
			r.Options = append(r.Options, rawOption(raw, key))
		}
	}
	if len(r.Options) > 0 {
		r.OptionSource = OptionsNumbered
		return
	}

	for _, letter := range letterKeys {
		if raw, ok := fields[letter]; ok && !isEmpty(raw) {
			r.Options = append(r.Options, rawOption(raw, letter))
		}
	}
	if len(r.Options) > 0 {
		r.OptionSource = OptionsLettered
	}
}

// rawOption reads a bare string, a scalar, or an object with id/text/value/option.
func rawOption(raw json.RawMessage, fallbackID string) RawOption {
	opt := RawOption{FallbackID: fallbackID}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil && obj != nil {
		opt.ID = scalarString(obj["id"])
		for _, key := range []string{"text", "value", "option"} {
			if t := scalarString(obj[key]); t != "" {
				opt.Text = t
				break
			}
		}
		return opt
	}
	opt.Text = scalarString(raw)
	return opt
}

func answerKey(raw json.RawMessage) AnswerKey {
	if isEmpty(raw) {
		return AnswerKey{}
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return AnswerKey{}
		}
		return AnswerKey{Kind: AnswerID, ID: s}
	}
	if n, ok := intValue(raw); ok {
		return AnswerKey{Kind: AnswerIndex, Index: n}
	}
	return AnswerKey{}
}

func explanationText(raw json.RawMessage) string {
	if isEmpty(raw) {
		return ""
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil && obj != nil {
		return scalarString(obj["text"])
	}
	return scalarString(raw)
}

// scalarString renders a JSON string, number or bool as text.
func scalarString(raw json.RawMessage) string {
	if isEmpty(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// intValue reads an integral JSON number.
func intValue(raw json.RawMessage) (int, bool) {
	if isEmpty(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}
