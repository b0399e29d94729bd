package logbook

import (
	"context"
	"errors"
	"time"
)

// ErrSummaryNotFound is returned when a daily log has not been summarised yet.
var ErrSummaryNotFound = errors.New("summary not found")

// ListOptions contains options for listing daily logs.
type ListOptions struct {
	// DriverID restricts the result to one driver when non-zero.
	DriverID int64
	Limit    int
	// Cursor is the ID of the last log of the previous page.
	Cursor int64
}

// ListResult contains the results of listing daily logs.
type ListResult struct {
	Items      []*DailyLog
	NextCursor int64
}

// Repository defines the interface for daily log persistence.
type Repository interface {
	// GetDailyLog retrieves a daily log by ID.
	// Returns ErrDailyLogNotFound if it doesn't exist.
	GetDailyLog(ctx context.Context, id int64) (*DailyLog, error)

	// ListDailyLogs lists daily logs, newest first.
	ListDailyLogs(ctx context.Context, opts ListOptions) (*ListResult, error)

	// CreateDailyLog stores a new daily log and sets its ID.
	CreateDailyLog(ctx context.Context, log *DailyLog) error

	// ListDutyStatuses lists the duty statuses of a daily log by timestamp.
	ListDutyStatuses(ctx context.Context, dailyLogID int64) ([]*DutyStatus, error)

	// ListDriverDutyStatuses lists, in timestamp order, a driver's duty
	// statuses at or after since, preceded by the latest one before since so
	// the status already active at since is known.
	ListDriverDutyStatuses(ctx context.Context, driverID int64, since time.Time) ([]*DutyStatus, error)

	// CreateDutyStatus stores a new duty status and sets its ID.
	CreateDutyStatus(ctx context.Context, status *DutyStatus) error
}

// SummaryRepository stores daily log summaries.
type SummaryRepository interface {
	// SaveSummary inserts or replaces the summary of a daily log.
	SaveSummary(ctx context.Context, summary *Summary) error

	// GetSummary returns ErrSummaryNotFound if the log was never summarised.
	GetSummary(ctx context.Context, dailyLogID int64) (*Summary, error)
}

// FleetRepository stores the drivers, trucks and trailers daily logs refer
// to. Lists are ordered by ID. Create methods return ErrDuplicate when a
// license number, truck number, license plate or trailer number is taken.
type FleetRepository interface {
	CreateDriver(ctx context.Context, driver *Driver) error
	GetDriver(ctx context.Context, id int64) (*Driver, error)
	ListDrivers(ctx context.Context) ([]*Driver, error)

	CreateTruck(ctx context.Context, truck *Truck) error
	GetTruck(ctx context.Context, id int64) (*Truck, error)
	ListTrucks(ctx context.Context) ([]*Truck, error)

	CreateTrailer(ctx context.Context, trailer *Trailer) error
	GetTrailer(ctx context.Context, id int64) (*Trailer, error)
	ListTrailers(ctx context.Context) ([]*Trailer, error)
}

// Pinger is implemented by repositories that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}
