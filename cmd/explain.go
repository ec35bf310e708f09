package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/question"
)

var explainCmd = &cobra.Command{
	Use:   "explain <pool> <question-id>",
	Short: "Print a question with its answer and explanation",
	Long: "Print one question from a bank together with the correct answer. When the\n" +
		"bank has no explanation and a provider is configured, one is generated.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := parseSource(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		e, err := openEnv(ctx, true)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := bank.LoadPool(ctx, e.loader(true), string(src), e.log)
		if err != nil {
			return err
		}
		q, ok := findQuestion(res.Pool, args[1])
		if !ok {
			return fmt.Errorf("%s has no question %q", res.Pool.Name, args[1])
		}

		svc, err := e.explainer(ctx)
		if err != nil {
			return err
		}
		text, err := svc.Explain(ctx, q, nil)

		out := cmd.OutOrStdout()
		printQuestion(out, q)
		if err != nil {
			return fmt.Errorf("explain: %w", err)
		}
		fmt.Fprintf(out, "\n%s\n", text)
		return nil
	},
}

func findQuestion(p *question.Pool, id string) (question.Question, bool) {
	for _, q := range p.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}

func printQuestion(w io.Writer, q question.Question) {
	fmt.Fprintf(w, "%s\n\n", q.Text)
	for i, o := range q.Options {
		mark := " "
		if i == q.CorrectIndex {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %c. %s\n", mark, 'A'+i, o.Text)
	}
	fmt.Fprintln(w, strings.Repeat("─", 40))
}
