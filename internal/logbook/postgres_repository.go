package logbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldview/eldview/internal/timeline"
)

// PostgresRepository is a PostgreSQL implementation of Repository,
// SummaryRepository and FleetRepository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL logbook repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const dailyLogColumns = `id, driver_id, co_driver_id, truck_id, trailer_id, status, created_at, updated_at`

const dutyStatusColumns = `
	ds.id, ds.daily_log_id, ds.duty_status, ds.location_address,
	ds.latitude, ds.longitude, ds.recorded_at, ds.notes, ds.created_at`

// GetDailyLog retrieves a daily log by ID.
func (r *PostgresRepository) GetDailyLog(ctx context.Context, id int64) (*DailyLog, error) {
	query := `SELECT ` + dailyLogColumns + ` FROM daily_logs WHERE id = $1`

	l, err := scanDailyLog(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDailyLogNotFound
		}
		return nil, err
	}
	return l, nil
}

// ListDailyLogs lists daily logs, newest first.
func (r *PostgresRepository) ListDailyLogs(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + dailyLogColumns + `
		FROM daily_logs
		WHERE ($1::bigint = 0 OR driver_id = $1)
		  AND ($2::bigint = 0 OR id < $2)
		ORDER BY id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, opts.DriverID, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: logs}
	if len(logs) > limit {
		result.Items = logs[:limit]
		result.NextCursor = logs[limit-1].ID
	}

	return result, nil
}

// CreateDailyLog stores a new daily log and sets its ID.
func (r *PostgresRepository) CreateDailyLog(ctx context.Context, l *DailyLog) error {
	query := `
		INSERT INTO daily_logs (
			driver_id, co_driver_id, truck_id, trailer_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		l.DriverID,
		l.CoDriverID,
		l.TruckID,
		l.TrailerID,
		string(l.Status),
		l.CreatedAt,
		l.UpdatedAt,
	).Scan(&l.ID)
}

// ListDutyStatuses lists the duty statuses of a daily log by timestamp.
func (r *PostgresRepository) ListDutyStatuses(ctx context.Context, dailyLogID int64) ([]*DutyStatus, error) {
	query := `
		SELECT ` + dutyStatusColumns + `
		FROM duty_statuses ds
		WHERE ds.daily_log_id = $1
		ORDER BY ds.recorded_at, ds.id
	`
	return r.queryDutyStatuses(ctx, query, dailyLogID)
}

// ListDriverDutyStatuses lists a driver's duty statuses at or after since,
// preceded by the latest one before since.
func (r *PostgresRepository) ListDriverDutyStatuses(ctx context.Context, driverID int64, since time.Time) ([]*DutyStatus, error) {
	query := `
		(
			SELECT ` + dutyStatusColumns + `
			FROM duty_statuses ds
			JOIN daily_logs dl ON dl.id = ds.daily_log_id
			WHERE dl.driver_id = $1 AND ds.recorded_at < $2
			ORDER BY ds.recorded_at DESC, ds.id DESC
			LIMIT 1
		)
		UNION ALL
		(
			SELECT ` + dutyStatusColumns + `
			FROM duty_statuses ds
			JOIN daily_logs dl ON dl.id = ds.daily_log_id
			WHERE dl.driver_id = $1 AND ds.recorded_at >= $2
		)
		ORDER BY recorded_at, id
	`
	return r.queryDutyStatuses(ctx, query, driverID, since)
}

func (r *PostgresRepository) queryDutyStatuses(ctx context.Context, query string, args ...any) ([]*DutyStatus, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*DutyStatus
	for rows.Next() {
		var (
			ds     DutyStatus
			status string
		)
		err := rows.Scan(
			&ds.ID,
			&ds.DailyLogID,
			&status,
			&ds.LocationAddress,
			&ds.Latitude,
			&ds.Longitude,
			&ds.Timestamp,
			&ds.Notes,
			&ds.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		ds.Status = timeline.Status(status)
		statuses = append(statuses, &ds)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// CreateDutyStatus stores a new duty status and sets its ID.
func (r *PostgresRepository) CreateDutyStatus(ctx context.Context, s *DutyStatus) error {
	query := `
		INSERT INTO duty_statuses (
			daily_log_id, duty_status, location_address,
			latitude, longitude, recorded_at, notes, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM daily_logs WHERE id = $1)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		s.DailyLogID,
		string(s.Status),
		s.LocationAddress,
		s.Latitude,
		s.Longitude,
		s.Timestamp,
		s.Notes,
		s.CreatedAt,
	).Scan(&s.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDailyLogNotFound
	}
	return err
}

// SaveSummary inserts or replaces the summary of a daily log.
func (r *PostgresRepository) SaveSummary(ctx context.Context, s *Summary) error {
	query := `
		INSERT INTO daily_log_summaries (
			daily_log_id, off_duty_hours, sleeper_berth_hours, driving_hours,
			on_duty_hours, driving_minutes, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (daily_log_id) DO UPDATE SET
			off_duty_hours = EXCLUDED.off_duty_hours,
			sleeper_berth_hours = EXCLUDED.sleeper_berth_hours,
			driving_hours = EXCLUDED.driving_hours,
			on_duty_hours = EXCLUDED.on_duty_hours,
			driving_minutes = EXCLUDED.driving_minutes,
			computed_at = EXCLUDED.computed_at
	`

	_, err := r.pool.Exec(ctx, query,
		s.DailyLogID,
		s.Totals[timeline.StatusOffDuty],
		s.Totals[timeline.StatusSleeperBerth],
		s.Totals[timeline.StatusDriving],
		s.Totals[timeline.StatusOnDuty],
		s.DrivingMinutes,
		s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("save summary for daily log %d: %w", s.DailyLogID, err)
	}
	return nil
}

// GetSummary returns the stored summary of a daily log.
func (r *PostgresRepository) GetSummary(ctx context.Context, dailyLogID int64) (*Summary, error) {
	query := `
		SELECT off_duty_hours, sleeper_berth_hours, driving_hours, on_duty_hours,
			driving_minutes, computed_at
		FROM daily_log_summaries
		WHERE daily_log_id = $1
	`

	var offDuty, sleeper, driving, onDuty int
	s := Summary{DailyLogID: dailyLogID}
	err := r.pool.QueryRow(ctx, query, dailyLogID).Scan(
		&offDuty, &sleeper, &driving, &onDuty, &s.DrivingMinutes, &s.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}

	s.Totals = timeline.Totals{
		timeline.StatusOffDuty:      offDuty,
		timeline.StatusSleeperBerth: sleeper,
		timeline.StatusDriving:      driving,
		timeline.StatusOnDuty:       onDuty,
	}
	return &s, nil
}

const uniqueViolation = "23505"

// CreateDriver stores a new driver and sets its ID.
func (r *PostgresRepository) CreateDriver(ctx context.Context, d *Driver) error {
	query := `
		INSERT INTO drivers (
			first_name, last_name, license_number, phone, address, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		d.FirstName, d.LastName, d.LicenseNumber, d.Phone, d.Address, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	return insertError("driver", err)
}

// GetDriver retrieves a driver by ID.
func (r *PostgresRepository) GetDriver(ctx context.Context, id int64) (*Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	d, err := scanDriver(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDriverNotFound
	}
	return d, err
}

// ListDrivers lists all drivers by ID.
func (r *PostgresRepository) ListDrivers(ctx context.Context) ([]*Driver, error) {
	return queryAll(ctx, r.pool, `SELECT `+driverColumns+` FROM drivers ORDER BY id`, scanDriver)
}

// CreateTruck stores a new truck and sets its ID.
func (r *PostgresRepository) CreateTruck(ctx context.Context, t *Truck) error {
	query := `
		INSERT INTO trucks (
			truck_number, make_model, year, license_plate, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		t.TruckNumber, t.MakeModel, t.Year, t.LicensePlate, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	return insertError("truck", err)
}

// GetTruck retrieves a truck by ID.
func (r *PostgresRepository) GetTruck(ctx context.Context, id int64) (*Truck, error) {
	query := `SELECT ` + truckColumns + ` FROM trucks WHERE id = $1`

	t, err := scanTruck(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTruckNotFound
	}
	return t, err
}

// ListTrucks lists all trucks by ID.
func (r *PostgresRepository) ListTrucks(ctx context.Context) ([]*Truck, error) {
	return queryAll(ctx, r.pool, `SELECT `+truckColumns+` FROM trucks ORDER BY id`, scanTruck)
}

// CreateTrailer stores a new trailer and sets its ID.
func (r *PostgresRepository) CreateTrailer(ctx context.Context, t *Trailer) error {
	query := `
		INSERT INTO trailers (
			trailer_number, trailer_type, capacity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		t.TrailerNumber, string(t.Type), t.Capacity, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	return insertError("trailer", err)
}

// GetTrailer retrieves a trailer by ID.
func (r *PostgresRepository) GetTrailer(ctx context.Context, id int64) (*Trailer, error) {
	query := `SELECT ` + trailerColumns + ` FROM trailers WHERE id = $1`

	t, err := scanTrailer(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTrailerNotFound
	}
	return t, err
}

// ListTrailers lists all trailers by ID.
func (r *PostgresRepository) ListTrailers(ctx context.Context) ([]*Trailer, error) {
	return queryAll(ctx, r.pool, `SELECT `+trailerColumns+` FROM trailers ORDER BY id`, scanTrailer)
}

// Ping checks the database connection.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanDailyLog(row pgx.Row) (*DailyLog, error) {
	var (
		l      DailyLog
		status string
	)
	err := row.Scan(
		&l.ID,
		&l.DriverID,
		&l.CoDriverID,
		&l.TruckID,
		&l.TrailerID,
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = LogStatus(status)
	return &l, nil
}

const (
	driverColumns  = `id, first_name, last_name, license_number, phone, address, created_at, updated_at`
	truckColumns   = `id, truck_number, make_model, year, license_plate, created_at, updated_at`
	trailerColumns = `id, trailer_number, trailer_type, capacity, created_at, updated_at`
)

func scanDriver(row pgx.Row) (*Driver, error) {
	var d Driver
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.LicenseNumber, &d.Phone, &d.Address, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanTruck(row pgx.Row) (*Truck, error) {
	var t Truck
	err := row.Scan(&t.ID, &t.TruckNumber, &t.MakeModel, &t.Year, &t.LicensePlate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrailer(row pgx.Row) (*Trailer, error) {
	var (
		t           Trailer
		trailerType string
	)
	err := row.Scan(&t.ID, &t.TrailerNumber, &trailerType, &t.Capacity, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Type = TrailerType(trailerType)
	return &t, nil
}

func queryAll[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// insertError maps a unique violation to ErrDuplicate.
func insertError(entity string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", entity, pgErr.ConstraintName, ErrDuplicate)
	}
	return err
}

// Ensure PostgresRepository implements the repository interfaces.
var (
	_ Repository        = (*PostgresRepository)(nil)
	_ SummaryRepository = (*PostgresRepository)(nil)
	_ FleetRepository   = (*PostgresRepository)(nil)
)
