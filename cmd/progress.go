package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/session"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or clear saved sessions",
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.progress.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var progressClearCmd = &cobra.Command{
	Use:   "clear <source>",
	Short: "Discard the saved session for a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := parseSource(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.progress.ClearSource(cmd.Context(), src); err != nil {
			return fmt.Errorf("clear %s: %w", src, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared saved progress for %s.\n", src.DisplayName())
		return nil
	},
}

func printEntries(w io.Writer, entries []progress.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved sessions.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-10s  %-10s  %s\n", "Source", "Answered", "Position", "Saved")
	fmt.Fprintln(w, strings.Repeat("─", 64))
	for _, e := range displayOrder(entries) {
		name := string(e.Source)
		if e.Source.Valid() {
			name = e.Source.DisplayName()
		}
		if e.Err != nil {
			fmt.Fprintf(w, "%-24s  unreadable: %v\n", name, e.Err)
			continue
		}
		saved := "-"
		if e.Snapshot != nil && !e.Snapshot.SavedAt.IsZero() {
			saved = e.Snapshot.SavedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-24s  %-10s  %-10s  %s\n",
			name, e.Label(), fmt.Sprintf("%d/%d", e.Index+1, e.Total), saved)
	}
}

// displayOrder sorts entries the way the home menu lists sources.
func displayOrder(entries []progress.Entry) []progress.Entry {
	rank := make(map[session.Source]int)
	for i, s := range session.AllSources() {
		rank[s] = i
	}
	out := make([]progress.Entry, 0, len(entries))
	for _, s := range session.AllSources() {
		for _, e := range entries {
			if e.Source == s {
				out = append(out, e)
			}
		}
	}
	for _, e := range entries {
		if _, ok := rank[e.Source]; !ok {
			out = append(out, e)
		}
	}
	return out
}

func init() {
	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressClearCmd)
}
