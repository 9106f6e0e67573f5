package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/followup/internal/app"
	"github.com/nhle/followup/internal/completionlog"
	"github.com/nhle/followup/internal/theme"
)

// barWidth is the widest bar in the progress chart.
const barWidth = 20

func newStatsCmd(a **app.App) *cobra.Command {
	var (
		days   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion progress and streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *a
			summary := s.Session.Progress(s.Now(), days)
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, theme.HeaderStyle.Render("Progress"))
			for _, p := range summary.Series {
				fmt.Fprintf(out, "%-3s %2d %s\n", p.Label, p.Count, theme.Bar(p.Count, summary.MaxCount, barWidth))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Completed this week: %d\n", summary.CompletedThisWeek)
			fmt.Fprintf(out, "Total completed:     %d\n", summary.TotalCompleted)
			fmt.Fprintf(out, "Streak:              %d day(s)\n", summary.Streak)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", completionlog.DefaultWindow, "Number of days in the chart")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
