package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eldview/eldview/internal/timeline"
)

func newTimelineCmd(opts *options) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the dot events of the records",
		Long: `Prints one line per dot event: the midnight marker, each status change
with its carry to the next change, and the end-of-day marker. With --global
the events are ordered left to right across the grid instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := opts.entries(cmd)
			if err != nil {
				return err
			}

			events := timeline.DotEvents(entries, opts.loc)
			if global {
				events = timeline.GlobalTimeline(entries, opts.loc)
			}

			if opts.output == "json" {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			return printEvents(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "order events by grid position")
	return cmd
}

func printEvents(out io.Writer, events []timeline.DotEvent) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(out, "No records")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSOURCE\tTIME\tSTATUS")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Kind, e.SourceID, clock(e), e.Status.Label())
	}
	return tw.Flush()
}

// clock renders the grid position of e; the end-of-day marker is 24:00.
func clock(e timeline.DotEvent) string {
	minutes := e.Hour*60 + e.Percentage*60/100
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
