package logbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eldview/eldview/internal/api/models"
)

// Fleet field limits.
const (
	MaxNameLength          = 150
	MaxLicenseNumberLength = 50
	MaxPhoneLength         = 20
	MaxUnitNumberLength    = 20
	MaxMakeModelLength     = 100
	MaxLicensePlateLength  = 20
	MaxCapacityLength      = 50
	MinTruckYear           = 1900
)

// DriverInput holds the fields of a new driver.
type DriverInput struct {
	FirstName     string
	LastName      string
	LicenseNumber string
	Phone         string
	Address       string
}

// TruckInput holds the fields of a new truck.
type TruckInput struct {
	TruckNumber  string
	MakeModel    string
	Year         int
	LicensePlate string
}

// TrailerInput holds the fields of a new trailer.
type TrailerInput struct {
	TrailerNumber string
	Type          TrailerType
	Capacity      string
}

// HasFleet reports whether the log store also keeps drivers and equipment.
func (s *Service) HasFleet() bool {
	return s.fleet != nil
}

// CreateDriver validates and stores a new driver.
func (s *Service) CreateDriver(ctx context.Context, input DriverInput) (*Driver, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	input = DriverInput{
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		LicenseNumber: strings.TrimSpace(input.LicenseNumber),
		Phone:         strings.TrimSpace(input.Phone),
		Address:       strings.TrimSpace(input.Address),
	}
	if fieldErrors := validateDriver(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	d := &Driver{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		LicenseNumber: input.LicenseNumber,
		Phone:         input.Phone,
		Address:       input.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.fleet.CreateDriver(ctx, d); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	return d, nil
}

// GetDriver retrieves a driver by ID.
func (s *Service) GetDriver(ctx context.Context, id int64) (*Driver, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	return s.fleet.GetDriver(ctx, id)
}

// ListDrivers lists all drivers.
func (s *Service) ListDrivers(ctx context.Context) ([]*Driver, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	return s.fleet.ListDrivers(ctx)
}

// CreateTruck validates and stores a new truck.
func (s *Service) CreateTruck(ctx context.Context, input TruckInput) (*Truck, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	input.TruckNumber = strings.TrimSpace(input.TruckNumber)
	input.MakeModel = strings.TrimSpace(input.MakeModel)
	input.LicensePlate = strings.TrimSpace(input.LicensePlate)
	if fieldErrors := validateTruck(input, s.now().Year()+1); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	t := &Truck{
		TruckNumber:  input.TruckNumber,
		MakeModel:    input.MakeModel,
		Year:         input.Year,
		LicensePlate: input.LicensePlate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.fleet.CreateTruck(ctx, t); err != nil {
		return nil, fmt.Errorf("create truck: %w", err)
	}
	return t, nil
}

// GetTruck retrieves a truck by ID.
func (s *Service) GetTruck(ctx context.Context, id int64) (*Truck, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	return s.fleet.GetTruck(ctx, id)
}

// ListTrucks lists all trucks.
func (s *Service) ListTrucks(ctx context.Context) ([]*Truck, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	return s.fleet.ListTrucks(ctx)
}

// CreateTrailer validates and stores a new trailer.
func (s *Service) CreateTrailer(ctx context.Context, input TrailerInput) (*Trailer, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	input.TrailerNumber = strings.TrimSpace(input.TrailerNumber)
	input.Capacity = strings.TrimSpace(input.Capacity)
	if fieldErrors := validateTrailer(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := s.now()
	t := &Trailer{
		TrailerNumber: input.TrailerNumber,
		Type:          input.Type,
		Capacity:      input.Capacity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.fleet.CreateTrailer(ctx, t); err != nil {
		return nil, fmt.Errorf("create trailer: %w", err)
	}
	return t, nil
}

// GetTrailer retrieves a trailer by ID.
func (s *Service) GetTrailer(ctx context.Context, id int64) (*Trailer, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	return s.fleet.GetTrailer(ctx, id)
}

// ListTrailers lists all trailers.
func (s *Service) ListTrailers(ctx context.Context) ([]*Trailer, error) {
	if s.fleet == nil {
		return nil, ErrFleetUnsupported
	}
	return s.fleet.ListTrailers(ctx)
}

// Crew is the driver and equipment named on a daily log. Fields are nil when
// the referenced record is unknown.
type Crew struct {
	Driver   *Driver
	CoDriver *Driver
	Truck    *Truck
	Trailer  *Trailer
}

// crew resolves the references of l. Records expanded on the log itself win
// over the fleet store.
func (s *Service) crew(ctx context.Context, l *DailyLog) (Crew, error) {
	c := Crew{Driver: l.Driver, CoDriver: l.CoDriver, Truck: l.Truck, Trailer: l.Trailer}
	if s.fleet == nil {
		return c, nil
	}

	var err error
	if c.Driver == nil {
		c.Driver, err = lookup(ctx, s.fleet.GetDriver, l.DriverID, ErrDriverNotFound)
		if err != nil {
			return c, err
		}
	}
	if c.CoDriver == nil && l.CoDriverID != nil {
		c.CoDriver, err = lookup(ctx, s.fleet.GetDriver, *l.CoDriverID, ErrDriverNotFound)
		if err != nil {
			return c, err
		}
	}
	if c.Truck == nil {
		c.Truck, err = lookup(ctx, s.fleet.GetTruck, l.TruckID, ErrTruckNotFound)
		if err != nil {
			return c, err
		}
	}
	if c.Trailer == nil {
		c.Trailer, err = lookup(ctx, s.fleet.GetTrailer, l.TrailerID, ErrTrailerNotFound)
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

// lookup fetches one record, treating notFound as an absent record.
func lookup[T any](ctx context.Context, get func(context.Context, int64) (*T, error), id int64, notFound error) (*T, error) {
	v, err := get(ctx, id)
	if errors.Is(err, notFound) {
		return nil, nil
	}
	return v, err
}

func validateDriver(input DriverInput) []models.FieldError {
	var errs []models.FieldError

	errs = appendRequired(errs, "firstName", input.FirstName, MaxNameLength)
	errs = appendRequired(errs, "lastName", input.LastName, MaxNameLength)
	errs = appendRequired(errs, "licenseNumber", input.LicenseNumber, MaxLicenseNumberLength)
	errs = appendRequired(errs, "phone", input.Phone, MaxPhoneLength)
	errs = appendRequired(errs, "address", input.Address, MaxAddressLength)

	return errs
}

func validateTruck(input TruckInput, maxYear int) []models.FieldError {
	var errs []models.FieldError

	errs = appendRequired(errs, "truckNumber", input.TruckNumber, MaxUnitNumberLength)
	errs = appendRequired(errs, "makeModel", input.MakeModel, MaxMakeModelLength)
	if input.Year < MinTruckYear || input.Year > maxYear {
		errs = append(errs, models.FieldError{Field: "year", Message: fmt.Sprintf("must be between %d and %d", MinTruckYear, maxYear)})
	}
	errs = appendRequired(errs, "licensePlate", input.LicensePlate, MaxLicensePlateLength)

	return errs
}

func validateTrailer(input TrailerInput) []models.FieldError {
	var errs []models.FieldError

	errs = appendRequired(errs, "trailerNumber", input.TrailerNumber, MaxUnitNumberLength)
	if !input.Type.Valid() {
		errs = append(errs, models.FieldError{Field: "trailerType", Message: "must be one of flatbed, box, refrigerated, tanker, other"})
	}
	errs = appendRequired(errs, "capacity", input.Capacity, MaxCapacityLength)

	return errs
}

func appendRequired(errs []models.FieldError, field, value string, maxLen int) []models.FieldError {
	switch {
	case value == "":
		return append(errs, models.FieldError{Field: field, Message: "is required"})
	case len(value) > maxLen:
		return append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", maxLen)})
	}
	return errs
}
