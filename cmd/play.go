package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/screens/nav"
	"github.com/abhisek/mcqprep/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play <module1..module6|mixed|review>",
	Short: "Start a session straight away",
	Long: "Start a timed session for one module, a mixed draw across modules, or the\n" +
		"review bank. A bare number selects a module: `mcqprep play 3`.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := parseSource(args[0])
		if err != nil {
			return err
		}
		req := quiz.StartRequest{Source: src}

		if cmd.Flags().Changed("count") {
			n, _ := cmd.Flags().GetInt("count")
			if n < 0 {
				return fmt.Errorf("--count must not be negative, got %d", n)
			}
			req.Count = quiz.Limit(n)
		}
		if cmd.Flags().Changed("module") {
			if src != session.SourceReview {
				return fmt.Errorf("--module only applies to review sessions")
			}
			m, _ := cmd.Flags().GetInt("module")
			if m < 0 || m > session.ModuleCount {
				return fmt.Errorf("--module must be 0-%d, got %d", session.ModuleCount, m)
			}
			req.Module = &m
		}

		return runApp(cmd, nav.StartMsg{Request: req, Wait: true})
	},
}

func init() {
	playCmd.Flags().IntP("count", "n", 0, "Number of questions (0 = all)")
	playCmd.Flags().IntP("module", "m", 0, "Review bank: only questions from this module (0 = all)")
}

// parseSource accepts a source name or a bare module number.
func parseSource(s string) (session.Source, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if n < 1 || n > session.ModuleCount {
			return "", fmt.Errorf("module must be 1-%d, got %d", session.ModuleCount, n)
		}
		return session.ModuleSource(n), nil
	}
	return session.ParseSource(s)
}
