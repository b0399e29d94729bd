package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eldview/eldview/internal/timeline"
)

// Grid cells.
const (
	cellDot    = 'o'
	cellActive = '='
	cellEmpty  = '.'
)

func newGridCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Draw the 24-hour log book grid",
		Long: `Draws one row per duty status and one column per hour. 'o' marks an
hour with a dot for the status, '=' an hour that starts in the status.`,
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
			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), timeline.GroupByStatus(entries, opts.loc))
			}
			return drawGrid(cmd.OutOrStdout(), entries, day, opts.loc)
		},
	}
}

func drawGrid(out io.Writer, entries []timeline.Entry, day time.Time, loc *time.Location) error {
	events := timeline.DotEvents(entries, loc)

	active := make([]timeline.Status, 24)
	for hour := range active {
		active[hour] = timeline.ActiveStatusAt(hour, entries, day, loc)
	}
	totals := timeline.HourTotals(entries, day, loc)

	const labelWidth = 14
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", labelWidth, day.Format(time.DateOnly))
	for hour := range 24 {
		fmt.Fprintf(&b, "%d", hour%10)
	}
	b.WriteString("  hrs\n")

	for _, status := range timeline.Statuses {
		fmt.Fprintf(&b, "%-*s", labelWidth, status.Label())
		for hour := range 24 {
			switch {
			case timeline.HasDot(events, hour, status):
				b.WriteRune(cellDot)
			case active[hour] == status:
				b.WriteRune(cellActive)
			default:
				b.WriteRune(cellEmpty)
			}
		}
		fmt.Fprintf(&b, "  %3d\n", totals[status])
	}

	_, err := io.WriteString(out, b.String())
	return err
}
