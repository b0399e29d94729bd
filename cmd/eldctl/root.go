package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/timeline"
	"github.com/eldview/eldview/internal/tripapi"
)

// options are the persistent flags merged with the config file.
type options struct {
	configPath string
	file       string
	timezone   string
	dayStart   string
	output     string

	loc *time.Location
	cfg *config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "eldctl",
		Short: "Draw ELD duty-status timelines from exported records",
		Long: `eldctl reads duty-status records exported from the trips backend
and prints the dot events, hour totals and 24-hour grid of a log book day.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "config file")
	flags.StringVarP(&opts.file, "file", "f", "", "records file, - for stdin")
	flags.StringVar(&opts.timezone, "tz", "", "IANA time zone of the log book (default UTC)")
	flags.StringVar(&opts.dayStart, "day-start", "", "day of the log book, RFC 3339 or YYYY-MM-DD (default: day of the earliest record)")
	flags.StringVarP(&opts.output, "output", "o", "", "output format: table or json")

	root.AddCommand(newTimelineCmd(opts))
	root.AddCommand(newTotalsCmd(opts))
	root.AddCommand(newGridCmd(opts))

	return root
}

// resolve loads the config file and fills unset flags from it.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := loadConfig(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	o.cfg = cfg

	if o.timezone == "" {
		o.timezone = cfg.Timezone
	}
	if o.dayStart == "" {
		o.dayStart = cfg.DayStart
	}
	if o.output == "" {
		o.output = cfg.Output
	}
	switch o.output {
	case "":
		o.output = "table"
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}

	o.loc = time.UTC
	if o.timezone != "" {
		if o.loc, err = time.LoadLocation(o.timezone); err != nil {
			return fmt.Errorf("unknown time zone %q", o.timezone)
		}
	}
	return nil
}

// entries reads the records file.
func (o *options) entries(cmd *cobra.Command) ([]timeline.Entry, error) {
	var (
		data []byte
		err  error
	)
	switch o.file {
	case "":
		return nil, errors.New("--file is required")
	case "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(o.file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	statuses, err := tripapi.DecodeDutyStatuses(data)
	if err != nil {
		return nil, err
	}
	return logbook.Entries(statuses), nil
}

// day returns midnight of the log book day in the configured zone.
func (o *options) day(entries []timeline.Entry) (time.Time, error) {
	ref := time.Now()
	switch {
	case o.dayStart != "":
		t, err := parseDayStart(o.dayStart, o.loc)
		if err != nil {
			return time.Time{}, err
		}
		ref = t
	case len(entries) > 0:
		ref = timeline.Sorted(entries)[0].Timestamp
	}
	return timeline.HourBoundary(ref, 0, o.loc), nil
}
