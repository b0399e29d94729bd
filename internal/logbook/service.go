package logbook

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/timeline"
)

// Validation constants.
const (
	MaxAddressLength = 255
	MaxNotesLength   = 500
)

// Hours-of-service cycle: 70 hours of driving in any 8 consecutive days.
const (
	CycleLimit  = 70 * time.Hour
	CycleWindow = 8 * 24 * time.Hour
)

// Service provides daily log operations.
type Service struct {
	repo  Repository
	fleet FleetRepository
	now   func() time.Time
}

// NewService creates a new logbook service. Fleet operations are available
// when repo also implements FleetRepository.
func NewService(repo Repository) *Service {
	s := &Service{repo: repo, now: time.Now}
	if fleet, ok := repo.(FleetRepository); ok {
		s.fleet = fleet
	}
	return s
}

// WithClock replaces the service clock. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateDailyLogInput holds the fields of a new daily log.
type CreateDailyLogInput struct {
	DriverID   int64
	CoDriverID *int64
	TruckID    int64
	TrailerID  int64
	// Status defaults to planning.
	Status LogStatus
}

// DutyStatusInput holds the fields of a new duty status.
type DutyStatusInput struct {
	Status          timeline.Status
	LocationAddress string
	Latitude        *float64
	Longitude       *float64
	Timestamp       time.Time
	Notes           string
}

// ListDailyLogs lists daily logs, newest first. driverID 0 lists all drivers.
func (s *Service) ListDailyLogs(ctx context.Context, driverID int64, limit int, cursor int64) (*ListResult, error) {
	return s.repo.ListDailyLogs(ctx, ListOptions{DriverID: driverID, Limit: limit, Cursor: cursor})
}

// GetDailyLog retrieves a daily log by ID.
func (s *Service) GetDailyLog(ctx context.Context, id int64) (*DailyLog, error) {
	return s.repo.GetDailyLog(ctx, id)
}

// CreateDailyLog validates and stores a new daily log.
func (s *Service) CreateDailyLog(ctx context.Context, input CreateDailyLogInput) (*DailyLog, error) {
	if input.Status == "" {
		input.Status = LogStatusPlanning
	}
	if fieldErrors := validateDailyLog(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	l := &DailyLog{
		DriverID:   input.DriverID,
		CoDriverID: input.CoDriverID,
		TruckID:    input.TruckID,
		TrailerID:  input.TrailerID,
		Status:     input.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateDailyLog(ctx, l); err != nil {
		return nil, fmt.Errorf("create daily log: %w", err)
	}
	return l, nil
}

// ListDutyStatuses lists the duty statuses of a daily log by timestamp.
func (s *Service) ListDutyStatuses(ctx context.Context, dailyLogID int64) ([]*DutyStatus, error) {
	if _, err := s.repo.GetDailyLog(ctx, dailyLogID); err != nil {
		return nil, err
	}
	return s.repo.ListDutyStatuses(ctx, dailyLogID)
}

// GetDutyStatus returns one duty status of a daily log.
func (s *Service) GetDutyStatus(ctx context.Context, dailyLogID, id int64) (*DutyStatus, error) {
	statuses, err := s.ListDutyStatuses(ctx, dailyLogID)
	if err != nil {
		return nil, err
	}
	for _, ds := range statuses {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, ErrDutyStatusNotFound
}

// AddDutyStatus validates and records a duty-status change in a daily log.
func (s *Service) AddDutyStatus(ctx context.Context, dailyLogID int64, input DutyStatusInput) (*DutyStatus, error) {
	if _, err := s.repo.GetDailyLog(ctx, dailyLogID); err != nil {
		return nil, err
	}
	if fieldErrors := validateDutyStatus(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	ds := &DutyStatus{
		DailyLogID:      dailyLogID,
		Status:          input.Status,
		LocationAddress: input.LocationAddress,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Timestamp:       input.Timestamp,
		Notes:           input.Notes,
		CreatedAt:       s.now(),
	}
	if err := s.repo.CreateDutyStatus(ctx, ds); err != nil {
		return nil, fmt.Errorf("create duty status: %w", err)
	}
	return ds, nil
}

// View is everything needed to draw the log book of one day.
type View struct {
	DailyLog       *DailyLog
	Crew           Crew
	DutyStatuses   []*DutyStatus
	Location       *time.Location
	DotEvents      []timeline.DotEvent
	GlobalTimeline []timeline.DotEvent
	ByStatus       timeline.ByStatus
	Totals         timeline.Totals
}

// LogBook assembles the log-book view of a daily log in loc. The day is the
// calendar date of the log's creation time.
func (s *Service) LogBook(ctx context.Context, dailyLogID int64, loc *time.Location) (*View, error) {
	l, err := s.repo.GetDailyLog(ctx, dailyLogID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.ListDutyStatuses(ctx, dailyLogID)
	if err != nil {
		return nil, fmt.Errorf("list duty statuses: %w", err)
	}

	crew, err := s.crew(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("resolve crew: %w", err)
	}

	entries := Entries(statuses)
	return &View{
		DailyLog:       l,
		Crew:           crew,
		DutyStatuses:   statuses,
		Location:       loc,
		DotEvents:      timeline.DotEvents(entries, loc),
		GlobalTimeline: timeline.GlobalTimeline(entries, loc),
		ByStatus:       timeline.GroupByStatus(entries, loc),
		Totals:         timeline.HourTotals(entries, l.CreatedAt, loc),
	}, nil
}

// Summarize computes the summary of a daily log without storing it.
func (s *Service) Summarize(ctx context.Context, dailyLogID int64, loc *time.Location) (*Summary, error) {
	computedAt := s.now()
	l, err := s.repo.GetDailyLog(ctx, dailyLogID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.ListDutyStatuses(ctx, dailyLogID)
	if err != nil {
		return nil, fmt.Errorf("list duty statuses: %w", err)
	}

	entries := Entries(statuses)
	dayStart := timeline.HourBoundary(l.CreatedAt, 0, loc)
	driving := timeline.StatusDuration(entries, timeline.StatusDriving, dayStart, dayStart.AddDate(0, 0, 1))

	return &Summary{
		DailyLogID:     dailyLogID,
		Totals:         timeline.HourTotals(entries, l.CreatedAt, loc),
		DrivingMinutes: int(driving / time.Minute),
		ComputedAt:     computedAt,
	}, nil
}

// Cycle reports a driver's use of the 70-hour/8-day driving cycle.
type Cycle struct {
	DriverID       int64
	WindowStart    time.Time
	WindowEnd      time.Time
	UsedHours      float64
	RemainingHours float64
}

// DriverCycle sums the driving time of a driver over the trailing cycle
// window. A status that was already active when the window opened is counted
// from the window start, however long before it began.
func (s *Service) DriverCycle(ctx context.Context, driverID int64) (*Cycle, error) {
	end := s.now()
	start := end.Add(-CycleWindow)

	statuses, err := s.repo.ListDriverDutyStatuses(ctx, driverID, start)
	if err != nil {
		return nil, fmt.Errorf("list driver duty statuses: %w", err)
	}

	used := timeline.StatusDuration(Entries(statuses), timeline.StatusDriving, start, end)
	remaining := max(CycleLimit-used, 0)

	return &Cycle{
		DriverID:       driverID,
		WindowStart:    start,
		WindowEnd:      end,
		UsedHours:      roundHours(used),
		RemainingHours: roundHours(remaining),
	}, nil
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

func validateDailyLog(input CreateDailyLogInput) []models.FieldError {
	var errs []models.FieldError

	if input.DriverID <= 0 {
		errs = append(errs, models.FieldError{Field: "driverId", Message: "must be a positive id"})
	}
	if input.CoDriverID != nil && *input.CoDriverID <= 0 {
		errs = append(errs, models.FieldError{Field: "coDriverId", Message: "must be a positive id"})
	}
	if input.CoDriverID != nil && *input.CoDriverID == input.DriverID {
		errs = append(errs, models.FieldError{Field: "coDriverId", Message: "must differ from driverId"})
	}
	if input.TruckID <= 0 {
		errs = append(errs, models.FieldError{Field: "truckId", Message: "must be a positive id"})
	}
	if input.TrailerID <= 0 {
		errs = append(errs, models.FieldError{Field: "trailerId", Message: "must be a positive id"})
	}
	if !input.Status.Valid() {
		errs = append(errs, models.FieldError{Field: "status", Message: "must be one of planning, active, completed, cancelled"})
	}

	return errs
}

func validateDutyStatus(input DutyStatusInput) []models.FieldError {
	var errs []models.FieldError

	if !input.Status.Valid() {
		errs = append(errs, models.FieldError{Field: "dutyStatus", Message: "must be one of off_duty, sleeper_berth, driving, on_duty"})
	}
	if input.Timestamp.IsZero() {
		errs = append(errs, models.FieldError{Field: "timestamp", Message: "is required"})
	}
	if input.Latitude != nil && (*input.Latitude < -90 || *input.Latitude > 90) {
		errs = append(errs, models.FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if input.Longitude != nil && (*input.Longitude < -180 || *input.Longitude > 180) {
		errs = append(errs, models.FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		errs = append(errs, models.FieldError{Field: "latitude", Message: "latitude and longitude must be given together"})
	}
	if len(input.LocationAddress) > MaxAddressLength {
		errs = append(errs, models.FieldError{Field: "locationAddress", Message: "must be at most 255 characters"})
	}
	if len(input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
