package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:     "archive [tracker-id]",
	Aliases: []string{"a"},
	Short:   "Archive a tracker",
	Long: `Archive a tracker. Archived trackers are excluded from aggregate targets
but keep their session history.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}

		t, err := app.Trackers.Archive(context.Background(), id)
		if err != nil {
			return friendly(err)
		}

		fmt.Printf("🗃️  Archived tracker #%d: %s\n", t.ID, t.Name)
		return nil
	}),
}

var unarchiveCmd = &cobra.Command{
	Use:     "unarchive [tracker-id]",
	Aliases: []string{"ua"},
	Short:   "Unarchive a tracker",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}

		t, err := app.Trackers.Unarchive(context.Background(), id)
		if err != nil {
			return friendly(err)
		}

		fmt.Printf("📤 Unarchived tracker #%d: %s\n", t.ID, t.Name)
		return nil
	}),
}
