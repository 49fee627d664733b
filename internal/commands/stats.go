package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/tui"
)

var statsCmd = &cobra.Command{
	Use:   "stats [tracker-id]",
	Short: "Show work debt/advance for a tracker",
	Long: `Aggregate a tracker's whole history, from its first session through today.
Hours count on every day; the target only accumulates on configured work days.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		id, err := parseTrackerID(args[0])
		if err != nil {
			return err
		}
		ctx := context.Background()

		t, err := app.Trackers.Get(ctx, id)
		if err != nil {
			return friendly(err)
		}
		stats, err := app.Stats.ComputeWorkStats(ctx, id)
		if err != nil {
			return friendly(err)
		}

		headerStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(tui.ColorAccentMain)).
			Bold(true)
		fmt.Println(headerStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.Name)))

		fmt.Printf("Work days counted: %d\n", stats.TotalWorkDays)
		fmt.Printf("Hours worked:      %.2f\n", stats.TotalWorkHours)
		fmt.Printf("Target hours:      %.2f\n", stats.TargetWorkHours)

		switch {
		case stats.WorkDebt > 0:
			debtStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorError)).Bold(true)
			fmt.Println(debtStyle.Render(fmt.Sprintf("Work debt:         %.2fh behind target", stats.WorkDebt)))
		case stats.WorkAdvance > 0:
			aheadStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSuccess)).Bold(true)
			fmt.Println(aheadStyle.Render(fmt.Sprintf("Work advance:      %.2fh ahead of target", stats.WorkAdvance)))
		default:
			fmt.Println("Exactly on target")
		}
		return nil
	}),
}
