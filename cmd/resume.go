package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mcqprep/internal/screens/nav"
	"github.com/abhisek/mcqprep/internal/session"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [source]",
	Short: "Resume a saved session",
	Long:  "Resume the saved session for a source, or the most recently saved one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src session.Source
		if len(args) == 1 {
			s, err := parseSource(args[0])
			if err != nil {
				return err
			}
			src = s
		}
		return runApp(cmd, nav.ResumeMsg{Source: src})
	},
}
