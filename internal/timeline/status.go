// Package timeline turns duty-status changes into the dot events and hour
// totals drawn on a 24-hour daily log grid.
package timeline

import "time"

// Status is a driver duty status.
type Status string

// Duty statuses, in the row order of the log-book grid.
const (
	StatusOffDuty      Status = "off_duty"
	StatusSleeperBerth Status = "sleeper_berth"
	StatusDriving      Status = "driving"
	StatusOnDuty       Status = "on_duty"
)

// Statuses lists every duty status in grid row order.
var Statuses = [...]Status{StatusOffDuty, StatusSleeperBerth, StatusDriving, StatusOnDuty}

// StatusInfo holds the display metadata of a duty status.
type StatusInfo struct {
	Status Status
	Label  string
	Color  string
}

var statusInfo = map[Status]StatusInfo{
	StatusOffDuty:      {Status: StatusOffDuty, Label: "OFF DUTY", Color: "gray"},
	StatusSleeperBerth: {Status: StatusSleeperBerth, Label: "SLEEPER BERTH", Color: "purple"},
	StatusDriving:      {Status: StatusDriving, Label: "DRIVING", Color: "green"},
	StatusOnDuty:       {Status: StatusOnDuty, Label: "ON DUTY", Color: "blue"},
}

// Valid reports whether s is one of the four duty statuses.
func (s Status) Valid() bool {
	_, ok := statusInfo[s]
	return ok
}

// Info returns the display metadata for s. Unknown statuses get their raw
// value as label.
func (s Status) Info() StatusInfo {
	if info, ok := statusInfo[s]; ok {
		return info
	}
	return StatusInfo{Status: s, Label: string(s)}
}

// Label returns the upper-case grid label, e.g. "SLEEPER BERTH".
func (s Status) Label() string {
	return s.Info().Label
}

// Entry is a single duty-status change as seen by the timeline.
// ID is zero for records that were never saved.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Status    Status
}
