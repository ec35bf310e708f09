package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/mcqprep/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
// initial, when set, is delivered once the program starts.
func runApp(cmd *cobra.Command, initial tea.Msg) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctrl, err := e.controller(ctx)
	if err != nil {
		return fmt.Errorf("explanations: %w", err)
	}

	return app.Run(ctx, app.Options{
		Controller: ctrl,
		Progress:   e.progress,
		Loader:     e.loader(true),
		Logger:     e.log,
		Initial:    initial,
	})
}
