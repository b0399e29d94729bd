package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "eldctl.yaml"

// config holds defaults read from eldctl.yaml. Flags override every field.
type config struct {
	Timezone string `yaml:"timezone,omitempty"` // IANA zone, e.g. America/Chicago
	DayStart string `yaml:"day_start,omitempty"`
	Output   string `yaml:"output,omitempty"` // table or json
}

// loadConfig reads path. A missing default file yields an empty config; a
// missing file named explicitly is an error.
func loadConfig(path string, explicit bool) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// parseDayStart accepts RFC 3339 or a bare date, which is read in loc.
func parseDayStart(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day start %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
