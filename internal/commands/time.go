package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/tui"
)

var startCmd = &cobra.Command{
	Use:   "start [tracker-id]",
	Short: "Start tracking time on a tracker",
	Long: `Start a session. Opens a live timer by default, use --no-ui for a plain start.
Starting an already-running tracker is a no-op; the original start time is kept.

Examples:
  trackd start 3         # Start with live timer
  trackd start 3 --no-ui # Start and return to the shell`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()

		active, started, err := app.Trackers.Start(ctx, id)
		if err != nil {
			return friendly(err)
		}

		t, err := app.Trackers.Get(ctx, id)
		if err != nil {
			return friendly(err)
		}

		if !started {
			fmt.Printf("⏱️  Tracker #%d (%s) is already running since %s\n",
				t.ID, t.Name, active.StartTime.Local().Format("15:04:05"))
		} else {
			fmt.Printf("⏱️  Started tracking time for tracker #%d: %s\n", t.ID, t.Name)
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			return nil
		}

		stopRequested, err := tui.RunTimer(t, active)
		if err != nil {
			return err
		}
		if !stopRequested {
			fmt.Printf("💡 Timer keeps running for tracker #%d. Use 'trackd stop %d' to stop it.\n", t.ID, t.ID)
			return nil
		}

		session, err := app.Trackers.Stop(ctx, id)
		if err != nil {
			return friendly(err)
		}
		fmt.Printf("⏹️  Stopped tracker #%d: %s\n", t.ID, t.Name)
		fmt.Printf("Session duration: %s\n", formatMinutes(session.DurationMinutes))
		return nil
	}),
}

var stopCmd = &cobra.Command{
	Use:   "stop [tracker-id]",
	Short: "Stop the tracker's running session",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}

		session, err := app.Trackers.Stop(context.Background(), id)
		if err != nil {
			return friendly(err)
		}

		fmt.Printf("⏹️  Stopped tracker #%d\n", id)
		fmt.Printf("Session duration: %s (%s - %s)\n",
			formatMinutes(session.DurationMinutes),
			session.StartTime.Local().Format("15:04:05"),
			session.EndTime.Local().Format("15:04:05"))
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running sessions",
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		active, err := app.Trackers.ActiveSessions(ctx, app.User())
		if err != nil {
			return friendly(err)
		}

		if len(active) == 0 {
			fmt.Println("No active sessions")
			return nil
		}

		for _, as := range active {
			elapsed := time.Since(as.StartTime)
			name := fmt.Sprintf("#%d", as.TrackerID)
			if t, err := app.Trackers.Get(ctx, as.TrackerID); err == nil {
				name = fmt.Sprintf("#%d: %s", t.ID, t.Name)
			}
			fmt.Printf("⏱️  %s — running for %s (since %s)\n",
				name, formatDuration(elapsed), as.StartTime.Local().Format("15:04:05"))
		}
		return nil
	}),
}

func init() {
	startCmd.Flags().Bool("no-ui", false, "Start without the live timer UI")
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}

func formatMinutes(minutes int) string {
	return formatDuration(time.Duration(minutes) * time.Minute)
}
