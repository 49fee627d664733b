package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/tracker"
	"github.com/yerlanov/trackd/internal/tui"
)

var (
	reportPeriod  string
	reportFrom    string
	reportTo      string
	reportTracker uint
	reportTotal   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Daily totals or aggregate hours over a date range",
	Long: `Report worked time per calendar day, or with --total the aggregate
worked-versus-target summary. The range comes from --period (week, month,
year) or an explicit --from/--to pair of YYYY-MM-DD dates.

Examples:
  trackd report --period week
  trackd report --from 2026-08-01 --to 2026-08-28 --tracker 3
  trackd report --period month --total`,
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rng, err := resolveRange(cmd)
		if err != nil {
			return friendly(err)
		}

		var trackerID *uint
		if cmd.Flags().Changed("tracker") {
			trackerID = &reportTracker
		}

		if reportTotal {
			totals, err := app.Stats.TotalHours(ctx, app.User(), trackerID, rng.From, rng.To)
			if err != nil {
				return friendly(err)
			}
			printTotals(rng, totals)
			return nil
		}

		daily, err := app.Stats.DailyTotals(ctx, app.User(), trackerID, rng.From, rng.To)
		if err != nil {
			return friendly(err)
		}
		printDaily(daily)
		return nil
	}),
}

// resolveRange turns the report flags into a concrete date range; --period
// wins over --from/--to, and the default is the last week.
func resolveRange(cmd *cobra.Command) (tracker.DateRange, error) {
	if reportPeriod != "" {
		return tracker.ResolvePeriod(reportPeriod, time.Now())
	}
	if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
		from, err := time.ParseInLocation("2006-01-02", reportFrom, time.UTC)
		if err != nil {
			return tracker.DateRange{}, fmt.Errorf("%w: invalid --from date, use YYYY-MM-DD", tracker.ErrValidation)
		}
		to, err := time.ParseInLocation("2006-01-02", reportTo, time.UTC)
		if err != nil {
			return tracker.DateRange{}, fmt.Errorf("%w: invalid --to date, use YYYY-MM-DD", tracker.ErrValidation)
		}
		return tracker.DateRange{From: from, To: to}, nil
	}
	return tracker.ResolvePeriod("week", time.Now())
}

func printDaily(daily []tracker.DailyTotal) {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(tui.ColorAccentMain)).
		Bold(true)
	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(tui.ColorDisabledText))

	fmt.Println(headerStyle.Render("Date        Hours   Minutes  Sessions"))
	for _, d := range daily {
		line := fmt.Sprintf("%s  %6.2f  %7d  %8d", d.Date, d.TotalHours, d.TotalMinutes, d.SessionCount)
		if d.SessionCount == 0 {
			line = mutedStyle.Render(line)
		}
		fmt.Println(line)
	}
}

func printTotals(rng tracker.DateRange, totals *tracker.TotalsReport) {
	fmt.Printf("Range:       %s - %s\n", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	fmt.Printf("Worked:      %.2fh (%d min)\n", totals.TotalHours, totals.TotalMinutes)
	fmt.Printf("Target:      %.2fh\n", totals.TargetHours)

	if totals.Status == tracker.StatusAhead {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorSuccess)).Bold(true)
		fmt.Println(style.Render(fmt.Sprintf("Status:      ahead by %.2fh", totals.HoursDifference)))
	} else {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorError)).Bold(true)
		fmt.Println(style.Render(fmt.Sprintf("Status:      behind by %.2fh", totals.HoursDifference)))
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportPeriod, "period", "", "Symbolic range: week, month, or year")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Range start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Range end (YYYY-MM-DD)")
	reportCmd.Flags().UintVar(&reportTracker, "tracker", 0, "Restrict the report to one tracker")
	reportCmd.Flags().BoolVar(&reportTotal, "total", false, "Aggregate totals instead of the daily series")
}
