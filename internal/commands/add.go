package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/tracker"
)

var (
	addTarget float64
	addDays   string
	addDesc   string
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a new tracker",
	Long: `Create a tracker with a daily-hour target and a work-day calendar.

Examples:
  trackd add "Deep work" --target 4
  trackd add "Job" --target 8 --days 1,2,3,4,5 --desc "Main contract"`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		t, err := app.Trackers.CreateTracker(context.Background(), tracker.CreateTrackerRequest{
			UserID:      app.User(),
			Name:        args[0],
			TargetHours: addTarget,
			Description: addDesc,
			WorkDays:    addDays,
		})
		if err != nil {
			return friendly(err)
		}

		fmt.Printf("📌 Created tracker #%d: %s\n", t.ID, t.Name)
		fmt.Printf("Target: %.1fh on days %s\n", t.TargetHours, t.WorkDays)
		return nil
	}),
}

func init() {
	addCmd.Flags().Float64Var(&addTarget, "target", 8, "Target hours per work day")
	addCmd.Flags().StringVar(&addDays, "days", "", "Work days as comma-separated weekday indices, Sunday=0 (default 1,2,3,4,5)")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Tracker description")
}
