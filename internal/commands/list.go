package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/tui"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List trackers",
	RunE: withApp(func(app *App, cmd *cobra.Command, args []string) error {
		trackers, err := app.Trackers.List(context.Background(), app.User())
		if err != nil {
			return friendly(err)
		}

		headerStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(tui.ColorAccentMain)).
			Bold(true)
		mutedStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(tui.ColorDisabledText))

		fmt.Println(headerStyle.Render(fmt.Sprintf("Trackers for %s", app.User())))

		shown := 0
		for _, t := range trackers {
			if t.Archived && !listAll {
				continue
			}
			line := fmt.Sprintf("#%-4d %-24s %5.1fh/day  days %s", t.ID, t.Name, t.TargetHours, t.WorkDays)
			if t.Archived {
				line = mutedStyle.Render(line + "  (archived)")
			}
			fmt.Println(line)
			shown++
		}

		if shown == 0 {
			fmt.Println(mutedStyle.Render("No trackers. Create one with 'trackd add'."))
		}
		return nil
	}),
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include archived trackers")
}
