package logbook

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository,
// SummaryRepository and FleetRepository. It is used in tests and for
// LOGBOOK_BACKEND=memory.
type InMemoryRepository struct {
	mu        sync.RWMutex
	logs      map[int64]*DailyLog
	statuses  map[int64][]*DutyStatus
	summaries map[int64]*Summary
	drivers   map[int64]*Driver
	trucks    map[int64]*Truck
	trailers  map[int64]*Trailer
	lastLogID int64
	lastDSID  int64
	lastID    int64
}

// NewInMemoryRepository creates a new in-memory logbook repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		logs:      make(map[int64]*DailyLog),
		statuses:  make(map[int64][]*DutyStatus),
		summaries: make(map[int64]*Summary),
		drivers:   make(map[int64]*Driver),
		trucks:    make(map[int64]*Truck),
		trailers:  make(map[int64]*Trailer),
	}
}

// GetDailyLog retrieves a daily log by ID.
func (r *InMemoryRepository) GetDailyLog(_ context.Context, id int64) (*DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.logs[id]
	if !ok {
		return nil, ErrDailyLogNotFound
	}

	cpy := *l
	return &cpy, nil
}

// ListDailyLogs lists daily logs, newest first.
func (r *InMemoryRepository) ListDailyLogs(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var logs []*DailyLog
	for _, l := range r.logs {
		if opts.DriverID != 0 && l.DriverID != opts.DriverID {
			continue
		}
		if opts.Cursor != 0 && l.ID >= opts.Cursor {
			continue
		}
		cpy := *l
		logs = append(logs, &cpy)
	}
	slices.SortFunc(logs, func(a, b *DailyLog) int {
		return cmp.Compare(b.ID, a.ID)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: logs}
	if len(logs) > limit {
		result.Items = logs[:limit]
		result.NextCursor = logs[limit-1].ID
	}

	return result, nil
}

// CreateDailyLog stores a new daily log and sets its ID.
func (r *InMemoryRepository) CreateDailyLog(_ context.Context, l *DailyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastLogID++
	l.ID = r.lastLogID
	cpy := *l
	r.logs[l.ID] = &cpy
	return nil
}

// ListDutyStatuses lists the duty statuses of a daily log by timestamp.
func (r *InMemoryRepository) ListDutyStatuses(_ context.Context, dailyLogID int64) ([]*DutyStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedCopies(r.statuses[dailyLogID]), nil
}

// ListDriverDutyStatuses lists a driver's duty statuses at or after since,
// preceded by the latest one before since.
func (r *InMemoryRepository) ListDriverDutyStatuses(_ context.Context, driverID int64, since time.Time) ([]*DutyStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*DutyStatus
	for logID, statuses := range r.statuses {
		if l, ok := r.logs[logID]; ok && l.DriverID == driverID {
			matched = append(matched, statuses...)
		}
	}

	return ActiveSince(sortedCopies(matched), since), nil
}

// CreateDutyStatus stores a new duty status and sets its ID.
func (r *InMemoryRepository) CreateDutyStatus(_ context.Context, s *DutyStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.logs[s.DailyLogID]; !ok {
		return ErrDailyLogNotFound
	}

	r.lastDSID++
	s.ID = r.lastDSID
	cpy := *s
	r.statuses[s.DailyLogID] = append(r.statuses[s.DailyLogID], &cpy)
	return nil
}

// SaveSummary inserts or replaces the summary of a daily log.
func (r *InMemoryRepository) SaveSummary(_ context.Context, s *Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *s
	r.summaries[s.DailyLogID] = &cpy
	return nil
}

// GetSummary returns the stored summary of a daily log.
func (r *InMemoryRepository) GetSummary(_ context.Context, dailyLogID int64) (*Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.summaries[dailyLogID]
	if !ok {
		return nil, ErrSummaryNotFound
	}

	cpy := *s
	return &cpy, nil
}

// CreateDriver stores a new driver and sets its ID.
func (r *InMemoryRepository) CreateDriver(_ context.Context, d *Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.drivers {
		if existing.LicenseNumber == d.LicenseNumber {
			return fmt.Errorf("driver with license number %q: %w", d.LicenseNumber, ErrDuplicate)
		}
	}

	r.lastID++
	d.ID = r.lastID
	cpy := *d
	r.drivers[d.ID] = &cpy
	return nil
}

// GetDriver retrieves a driver by ID.
func (r *InMemoryRepository) GetDriver(_ context.Context, id int64) (*Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[id]
	if !ok {
		return nil, ErrDriverNotFound
	}
	cpy := *d
	return &cpy, nil
}

// ListDrivers lists all drivers by ID.
func (r *InMemoryRepository) ListDrivers(context.Context) ([]*Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return copiesByID(r.drivers), nil
}

// CreateTruck stores a new truck and sets its ID.
func (r *InMemoryRepository) CreateTruck(_ context.Context, t *Truck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.trucks {
		if existing.TruckNumber == t.TruckNumber {
			return fmt.Errorf("truck number %q: %w", t.TruckNumber, ErrDuplicate)
		}
		if existing.LicensePlate == t.LicensePlate {
			return fmt.Errorf("truck with license plate %q: %w", t.LicensePlate, ErrDuplicate)
		}
	}

	r.lastID++
	t.ID = r.lastID
	cpy := *t
	r.trucks[t.ID] = &cpy
	return nil
}

// GetTruck retrieves a truck by ID.
func (r *InMemoryRepository) GetTruck(_ context.Context, id int64) (*Truck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trucks[id]
	if !ok {
		return nil, ErrTruckNotFound
	}
	cpy := *t
	return &cpy, nil
}

// ListTrucks lists all trucks by ID.
func (r *InMemoryRepository) ListTrucks(context.Context) ([]*Truck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return copiesByID(r.trucks), nil
}

// CreateTrailer stores a new trailer and sets its ID.
func (r *InMemoryRepository) CreateTrailer(_ context.Context, t *Trailer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.trailers {
		if existing.TrailerNumber == t.TrailerNumber {
			return fmt.Errorf("trailer number %q: %w", t.TrailerNumber, ErrDuplicate)
		}
	}

	r.lastID++
	t.ID = r.lastID
	cpy := *t
	r.trailers[t.ID] = &cpy
	return nil
}

// GetTrailer retrieves a trailer by ID.
func (r *InMemoryRepository) GetTrailer(_ context.Context, id int64) (*Trailer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trailers[id]
	if !ok {
		return nil, ErrTrailerNotFound
	}
	cpy := *t
	return &cpy, nil
}

// ListTrailers lists all trailers by ID.
func (r *InMemoryRepository) ListTrailers(context.Context) ([]*Trailer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return copiesByID(r.trailers), nil
}

// Ping always succeeds.
func (r *InMemoryRepository) Ping(context.Context) error {
	return nil
}

func sortedCopies(statuses []*DutyStatus) []*DutyStatus {
	out := make([]*DutyStatus, 0, len(statuses))
	for _, s := range statuses {
		cpy := *s
		out = append(out, &cpy)
	}
	slices.SortFunc(out, func(a, b *DutyStatus) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func copiesByID[T any](records map[int64]*T) []*T {
	ids := slices.Sorted(maps.Keys(records))
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		cpy := *records[id]
		out = append(out, &cpy)
	}
	return out
}

// Ensure InMemoryRepository implements the repository interfaces.
var (
	_ Repository        = (*InMemoryRepository)(nil)
	_ SummaryRepository = (*InMemoryRepository)(nil)
	_ FleetRepository   = (*InMemoryRepository)(nil)
)
