package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/tracker"
)

var (
	editName   string
	editTarget float64
	editDays   string
	editDesc   string
)

var editCmd = &cobra.Command{
	Use:   "edit [tracker-id]",
	Short: "Edit a tracker",
	Long: `Edit a tracker's name, target, description, or work days.
Only the flags you pass are changed.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}

		var req tracker.UpdateTrackerRequest
		if cmd.Flags().Changed("name") {
			req.Name = &editName
		}
		if cmd.Flags().Changed("target") {
			req.TargetHours = &editTarget
		}
		if cmd.Flags().Changed("days") {
			req.WorkDays = &editDays
		}
		if cmd.Flags().Changed("desc") {
			req.Description = &editDesc
		}

		t, err := app.Trackers.UpdateTracker(context.Background(), id, req)
		if err != nil {
			return friendly(err)
		}

		fmt.Printf("✏️  Updated tracker #%d: %s\n", t.ID, t.Name)
		fmt.Printf("Target: %.1fh on days %s\n", t.TargetHours, t.WorkDays)
		return nil
	}),
}

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "New tracker name")
	editCmd.Flags().Float64Var(&editTarget, "target", 0, "New target hours per work day")
	editCmd.Flags().StringVar(&editDays, "days", "", "New work days (comma-separated weekday indices)")
	editCmd.Flags().StringVar(&editDesc, "desc", "", "New description")
}
