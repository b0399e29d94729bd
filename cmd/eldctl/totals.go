package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eldview/eldview/internal/timeline"
)

type totalsOutput struct {
	Date           string          `json:"date"`
	Timezone       string          `json:"timezone"`
	Totals         timeline.Totals `json:"totals"`
	DrivingMinutes int             `json:"drivingMinutes"`
}

func newTotalsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Print the hours spent in each duty status",
		Long: `Samples the active status at each of the 24 hour boundaries of the day
and prints the hours per status. Driving minutes are measured exactly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := opts.entries(cmd)
			if err != nil {
				return err
			}
			day, err := opts.day(entries)
			if err != nil {
				return err
			}

			driving := timeline.StatusDuration(entries, timeline.StatusDriving, day, day.AddDate(0, 0, 1))
			result := totalsOutput{
				Date:           day.Format(time.DateOnly),
				Timezone:       opts.loc.String(),
				Totals:         timeline.HourTotals(entries, day, opts.loc),
				DrivingMinutes: int(driving / time.Minute),
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printTotals(cmd.OutOrStdout(), result)
		},
	}
}

func printTotals(out io.Writer, r totalsOutput) error {
	fmt.Fprintf(out, "%s (%s)\n", r.Date, r.Timezone)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, s := range timeline.Statuses {
		fmt.Fprintf(tw, "%s\t%d\t\n", s.Label(), r.Totals[s])
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\n", r.Totals.Sum())
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "Driving: %dh%02dm\n", r.DrivingMinutes/60, r.DrivingMinutes%60)
	return err
}
