package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [tracker-id]",
	Short: "Delete a tracker and all its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}

		if err := app.Trackers.Delete(context.Background(), id); err != nil {
			return friendly(err)
		}

		fmt.Printf("🗑️  Deleted tracker #%d and its sessions\n", id)
		return nil
	}),
}
