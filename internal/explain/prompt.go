package explain

import (
	"fmt"
	"strings"

	"github.com/abhisek/mcqprep/internal/llm"
	"github.com/abhisek/mcqprep/internal/question"
)

const systemPrompt = `You are an exam tutor for professional accountancy candidates. Explain multiple-choice answers briefly and precisely.`

// Schema is the response shape for one explanation.
var Schema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Why the correct option is right and, when given, why the chosen option is wrong",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"explanation"},
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Two to five sentences of plain text",
			},
		},
	},
}

var letters = [question.OptionCount]string{"A", "B", "C", "D"}

func buildUserMessage(q question.Question, chosen *int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", q.Text)
	for i, o := range q.Options {
		fmt.Fprintf(&b, "%s. %s\n", letters[i], o.Text)
	}
	fmt.Fprintf(&b, "\nCorrect answer: %s\n", letters[q.CorrectIndex])

	switch {
	case chosen == nil:
		b.WriteString("The candidate skipped this question.\n")
	case *chosen == q.CorrectIndex:
		b.WriteString("The candidate chose the correct answer.\n")
	default:
		fmt.Fprintf(&b, "The candidate chose %s.\n", letters[*chosen])
	}

	b.WriteString(`
Instructions:
1. State why the correct option is right.
2. If the candidate chose a wrong option, say what makes it wrong.
3. Plain text only. No markdown, no bullet points.`)
	return b.String()
}
