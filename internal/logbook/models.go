// Package logbook manages daily logs and the duty-status changes recorded in
// them, and assembles the log-book view of a day.
package logbook

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/eldview/eldview/internal/timeline"
)

// Repository errors.
var (
	ErrDailyLogNotFound   = errors.New("daily log not found")
	ErrDutyStatusNotFound = errors.New("duty status not found")
	ErrDriverNotFound     = errors.New("driver not found")
	ErrTruckNotFound      = errors.New("truck not found")
	ErrTrailerNotFound    = errors.New("trailer not found")

	// ErrDuplicate is returned when a unique fleet number is already taken.
	ErrDuplicate = errors.New("already exists")

	// ErrFleetUnsupported is returned by fleet operations when the log store
	// keeps no drivers or equipment.
	ErrFleetUnsupported = errors.New("the log store keeps no fleet records")
)

// LogStatus is the lifecycle state of a daily log.
type LogStatus string

const (
	LogStatusPlanning  LogStatus = "planning"
	LogStatusActive    LogStatus = "active"
	LogStatusCompleted LogStatus = "completed"
	LogStatusCancelled LogStatus = "cancelled"
)

// Valid reports whether s is a known log status.
func (s LogStatus) Valid() bool {
	switch s {
	case LogStatusPlanning, LogStatusActive, LogStatusCompleted, LogStatusCancelled:
		return true
	}
	return false
}

// DailyLog is one driver's log for one day.
type DailyLog struct {
	ID         int64
	DriverID   int64
	CoDriverID *int64
	TruckID    int64
	TrailerID  int64
	Status     LogStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Set when the store returns the log with its references expanded.
	Driver   *Driver
	CoDriver *Driver
	Truck    *Truck
	Trailer  *Trailer
}

// Driver is a driver who can be named on daily logs.
type Driver struct {
	ID            int64
	FirstName     string
	LastName      string
	LicenseNumber string
	Phone         string
	Address       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName joins the first and last name.
func (d *Driver) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Truck is a power unit.
type Truck struct {
	ID           int64
	TruckNumber  string
	MakeModel    string
	Year         int
	LicensePlate string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TrailerType is the body type of a trailer.
type TrailerType string

const (
	TrailerFlatbed      TrailerType = "flatbed"
	TrailerBox          TrailerType = "box"
	TrailerRefrigerated TrailerType = "refrigerated"
	TrailerTanker       TrailerType = "tanker"
	TrailerOther        TrailerType = "other"
)

// Valid reports whether t is a known trailer type.
func (t TrailerType) Valid() bool {
	switch t {
	case TrailerFlatbed, TrailerBox, TrailerRefrigerated, TrailerTanker, TrailerOther:
		return true
	}
	return false
}

// Trailer is a trailer hauled under a daily log.
type Trailer struct {
	ID            int64
	TrailerNumber string
	Type          TrailerType
	Capacity      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DutyStatus is a duty-status change recorded in a daily log.
type DutyStatus struct {
	ID              int64
	DailyLogID      int64
	Status          timeline.Status
	LocationAddress string
	Latitude        *float64
	Longitude       *float64
	Timestamp       time.Time
	Notes           string
	CreatedAt       time.Time
}

// Entry projects the record onto the timeline.
func (d *DutyStatus) Entry() timeline.Entry {
	return timeline.Entry{ID: d.ID, Timestamp: d.Timestamp, Status: d.Status}
}

// HasLocation reports whether the record carries coordinates.
func (d *DutyStatus) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// Entries projects records onto the timeline.
func Entries(statuses []*DutyStatus) []timeline.Entry {
	entries := make([]timeline.Entry, 0, len(statuses))
	for _, s := range statuses {
		entries = append(entries, s.Entry())
	}
	return entries
}

// ActiveSince returns the statuses in effect at or after since: the latest
// status before since, if any, followed by every status at or after it.
// statuses must be in timestamp order.
func ActiveSince(statuses []*DutyStatus, since time.Time) []*DutyStatus {
	i, _ := slices.BinarySearchFunc(statuses, since, func(s *DutyStatus, t time.Time) int {
		return s.Timestamp.Compare(t)
	})
	if i > 0 {
		i--
	}
	return statuses[i:]
}

// Summary is the stored result of summarising a daily log.
type Summary struct {
	DailyLogID     int64
	Totals         timeline.Totals
	DrivingMinutes int
	// ComputedAt is taken before the duty statuses are read.
	ComputedAt time.Time
}

// Covers reports whether the summary was computed after every status in
// statuses had been recorded.
func (s *Summary) Covers(statuses []*DutyStatus) bool {
	for _, ds := range statuses {
		if ds.CreatedAt.After(s.ComputedAt) {
			return false
		}
	}
	return true
}
