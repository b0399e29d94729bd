// Package simulator generates a plausible driving day for a driver and
// records it as a completed daily log.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/timeline"
)

// Route and pacing limits.
const (
	MaxRouteKm      = 300
	MaxPairKm       = 200
	FuelIntervalKm  = 1600
	MaxLegDriving   = 3 * time.Hour
	checkInInterval = 30 * time.Minute
)

// Event is one simulated duty-status change.
type Event struct {
	Time     time.Time       `json:"time"`
	Status   timeline.Status `json:"status"`
	Location string          `json:"location"`
	Lat      float64         `json:"lat"`
	Lon      float64         `json:"lon"`
	Notes    string          `json:"notes"`
}

// Plan is a generated day before it is recorded.
type Plan struct {
	DriverID  int64
	TruckID   int64
	TrailerID int64
	Route     []City
	Events    []Event
	Start     time.Time
	End       time.Time
}

// Span is the time from the start of the day to the last event.
func (p *Plan) Span() time.Duration {
	return p.End.Sub(p.Start)
}

// Result is a recorded simulated day.
type Result struct {
	Plan
	DailyLog *logbook.DailyLog
}

// Recorder stores daily logs and their duty statuses. *logbook.Service
// implements it.
type Recorder interface {
	CreateDailyLog(ctx context.Context, input logbook.CreateDailyLogInput) (*logbook.DailyLog, error)
	AddDutyStatus(ctx context.Context, dailyLogID int64, input logbook.DutyStatusInput) (*logbook.DutyStatus, error)
}

// SummaryPublisher queues the summary of a recorded daily log.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, dailyLogID int64) error
}

// Simulator generates and records simulated days.
type Simulator struct {
	recorder  Recorder
	publisher SummaryPublisher
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRand sets the random source.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rnd = r }
}

// WithClock sets the clock used to pick the simulated day.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithLocation sets the zone the day is laid out in. Nil means UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Simulator) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPublisher queues a summary job for every recorded day.
func WithPublisher(p SummaryPublisher) Option {
	return func(s *Simulator) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// New creates a simulator recording through rec.
func New(rec Recorder, opts ...Option) *Simulator {
	s := &Simulator{
		recorder: rec,
		logger:   zerolog.Nop(),
		loc:      time.UTC,
		now:      time.Now,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SimulateDay generates a day for driverID and records it as a completed
// daily log. A failing summary publish is logged and does not fail the call.
func (s *Simulator) SimulateDay(ctx context.Context, driverID int64) (*Result, error) {
	plan := s.Plan(driverID)

	l, err := s.recorder.CreateDailyLog(ctx, logbook.CreateDailyLogInput{
		DriverID:  plan.DriverID,
		TruckID:   plan.TruckID,
		TrailerID: plan.TrailerID,
		Status:    logbook.LogStatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	for i, e := range plan.Events {
		lat, lon := e.Lat, e.Lon
		_, err := s.recorder.AddDutyStatus(ctx, l.ID, logbook.DutyStatusInput{
			Status:          e.Status,
			LocationAddress: e.Location,
			Latitude:        &lat,
			Longitude:       &lon,
			Timestamp:       e.Time,
			Notes:           e.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("record event %d of daily log %d: %w", i+1, l.ID, err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSummary(ctx, l.ID); err != nil {
			s.logger.Warn().Err(err).Int64("daily_log_id", l.ID).Msg("failed to queue daily log summary")
		}
	}

	s.logger.Info().
		Int64("daily_log_id", l.ID).
		Int64("driver_id", driverID).
		Int("events", len(plan.Events)).
		Dur("span", plan.Span()).
		Msg("simulated day recorded")

	return &Result{Plan: *plan, DailyLog: l}, nil
}

// Plan generates a day for driverID without recording it.
func (s *Simulator) Plan(driverID int64) *Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.startTime()
	route := s.pickRoute()
	first, last := route[0], route[len(route)-1]

	p := &Plan{
		DriverID:  driverID,
		TruckID:   int64(s.rnd.IntN(2)) + 1,
		TrailerID: int64(s.rnd.IntN(3)) + 1,
		Route:     route,
		Start:     start,
	}
	add := func(t time.Time, status timeline.Status, where string, lat, lon float64, notes string) {
		p.Events = append(p.Events, Event{
			Time:     roundQuarter(t),
			Status:   status,
			Location: where,
			Lat:      lat,
			Lon:      lon,
			Notes:    notes,
		})
	}

	now := start
	add(now, timeline.StatusOffDuty, first.Name, first.Lat, first.Lon, "Day start - Off duty")
	now = now.Add(15 * time.Minute)
	add(now, timeline.StatusOnDuty, first.Name, first.Lat, first.Lon, "Pre-trip inspection")
	now = now.Add(15 * time.Minute)
	add(now, timeline.StatusDriving, first.Name, first.Lat, first.Lon, "Start driving")

	var travelled float64
	for i := 1; i < len(route); i++ {
		from, to := route[i-1], route[i]
		legKm := DistanceKm(from, to)

		if math.Floor(travelled/FuelIntervalKm) < math.Floor((travelled+legKm)/FuelIntervalKm) {
			add(now, timeline.StatusOnDuty, from.Name, from.Lat, from.Lon, "Fueling stop")
			now = now.Add(time.Duration(15+s.rnd.IntN(16)) * time.Minute)
			add(now, timeline.StatusDriving, from.Name, from.Lat, from.Lon, "Resume driving after fueling")
		}

		driving := s.legDriving(legKm)
		legStart := now
		now = now.Add(driving)

		checkIns := int(driving / checkInInterval)
		for j := 1; j <= checkIns; j++ {
			progress := float64(j) / float64(checkIns+1)
			lat, lon := along(from, to, progress)
			add(legStart.Add(time.Duration(j)*checkInInterval), timeline.StatusDriving,
				"En route to "+to.Name, lat, lon,
				fmt.Sprintf("Driving - %d%% complete", int(math.Round(progress*100))))
		}

		add(now, timeline.StatusOnDuty, to.Name, to.Lat, to.Lon, "Loading/unloading")
		now = now.Add(time.Duration(30+s.rnd.IntN(31)) * time.Minute)
		add(now, timeline.StatusDriving, to.Name, to.Lat, to.Lon, "Resume driving")

		travelled += legKm
	}

	now = now.Add(time.Hour)
	add(now, timeline.StatusOffDuty, last.Name, last.Lat, last.Lon, "End of day")
	now = now.Add(time.Hour)
	add(now, timeline.StatusSleeperBerth, last.Name, last.Lat, last.Lon, "Sleeper berth")

	p.End = p.Events[len(p.Events)-1].Time
	return p
}

// startTime picks a quarter hour between 05:00 and 06:45 of today.
func (s *Simulator) startTime() time.Time {
	today := s.now().In(s.loc)
	hour := 5 + s.rnd.IntN(2)
	minute := 15 * s.rnd.IntN(4)
	return time.Date(today.Year(), today.Month(), today.Day(), hour, minute, 0, 0, s.loc)
}

// pickRoute takes 2 or 3 shuffled cities, falling back to a random close pair
// when they are too far apart for one day.
func (s *Simulator) pickRoute() []City {
	cities := make([]City, len(TruckRoutes))
	copy(cities, TruckRoutes)
	s.rnd.Shuffle(len(cities), func(i, j int) {
		cities[i], cities[j] = cities[j], cities[i]
	})
	route := cities[:2+s.rnd.IntN(2)]

	if RouteKm(route) > MaxRouteKm {
		if pairs := ClosePairs(TruckRoutes, MaxPairKm); len(pairs) > 0 {
			pair := pairs[s.rnd.IntN(len(pairs))]
			route = pair[:]
		}
	}
	return route
}

// legDriving is the driving time of one leg at 60 to 75 km/h, capped at
// MaxLegDriving and varied by up to 20% either way.
func (s *Simulator) legDriving(km float64) time.Duration {
	speed := 60 + s.rnd.Float64()*15
	hours := math.Min(km/speed, MaxLegDriving.Hours())
	hours *= 0.8 + s.rnd.Float64()*0.4
	return time.Duration(math.Floor(hours*60)) * time.Minute
}

// roundQuarter rounds t to the nearest quarter hour of its wall clock.
func roundQuarter(t time.Time) time.Time {
	quarters := (t.Minute() + 7) / 15
	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return hour.Add(time.Duration(quarters*15) * time.Minute)
}
