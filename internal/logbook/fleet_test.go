package logbook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eldview/eldview/internal/logbook"
)

func createDriver(t *testing.T, svc *logbook.Service, license string) *logbook.Driver {
	t.Helper()
	d, err := svc.CreateDriver(context.Background(), logbook.DriverInput{
		FirstName:     "Ana",
		LastName:      "Ruiz",
		LicenseNumber: license,
		Phone:         "555-0100",
		Address:       "1 Main St, Dallas, TX",
	})
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	return d
}

func TestService_CreateDriver(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	d, err := svc.CreateDriver(ctx, logbook.DriverInput{
		FirstName:     "  Ana ",
		LastName:      "Ruiz",
		LicenseNumber: " TX-1234567 ",
		Phone:         "555-0100",
		Address:       "1 Main St, Dallas, TX",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == 0 {
		t.Error("expected driver ID to be set")
	}
	if d.FullName() != "Ana Ruiz" {
		t.Errorf("expected full name %q, got %q", "Ana Ruiz", d.FullName())
	}
	if d.LicenseNumber != "TX-1234567" {
		t.Errorf("expected trimmed license number, got %q", d.LicenseNumber)
	}
	if !d.CreatedAt.Equal(fixedNow) {
		t.Errorf("expected created at %v, got %v", fixedNow, d.CreatedAt)
	}

	got, err := svc.GetDriver(ctx, d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *d {
		t.Errorf("expected %+v, got %+v", d, got)
	}

	drivers, err := svc.ListDrivers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != d.ID {
		t.Errorf("expected only driver %d, got %+v", d.ID, drivers)
	}
}

func TestService_CreateDriver_DuplicateLicense(t *testing.T) {
	svc, _ := newService()
	createDriver(t, svc, "TX-1234567")

	_, err := svc.CreateDriver(context.Background(), logbook.DriverInput{
		FirstName:     "Bo",
		LastName:      "Lee",
		LicenseNumber: "TX-1234567",
		Phone:         "555-0101",
		Address:       "2 Main St",
	})
	if !errors.Is(err, logbook.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestService_CreateTruck_Duplicates(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.CreateTruck(ctx, logbook.TruckInput{
		TruckNumber: "T-101", MakeModel: "Freightliner Cascadia", Year: 2022, LicensePlate: "ABC1234",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		input logbook.TruckInput
	}{
		{"truck number", logbook.TruckInput{TruckNumber: "T-101", MakeModel: "Volvo VNL", Year: 2020, LicensePlate: "XYZ9876"}},
		{"license plate", logbook.TruckInput{TruckNumber: "T-102", MakeModel: "Volvo VNL", Year: 2020, LicensePlate: "ABC1234"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTruck(ctx, tt.input)
			if !errors.Is(err, logbook.ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}
		})
	}
}

func TestService_Fleet_ValidationErrors(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	valid := logbook.DriverInput{FirstName: "Ana", LastName: "Ruiz", LicenseNumber: "TX-1", Phone: "555", Address: "1 Main St"}

	tests := []struct {
		name   string
		create func() error
		field  string
	}{
		{
			name: "driver without first name",
			create: func() error {
				in := valid
				in.FirstName = "   "
				_, err := svc.CreateDriver(ctx, in)
				return err
			},
			field: "firstName",
		},
		{
			name: "driver phone too long",
			create: func() error {
				in := valid
				in.Phone = "555-0100-555-0100-555"
				_, err := svc.CreateDriver(ctx, in)
				return err
			},
			field: "phone",
		},
		{
			name: "truck year too old",
			create: func() error {
				_, err := svc.CreateTruck(ctx, logbook.TruckInput{TruckNumber: "T-1", MakeModel: "Mack", Year: 1899, LicensePlate: "P1"})
				return err
			},
			field: "year",
		},
		{
			name: "truck year beyond next model year",
			create: func() error {
				_, err := svc.CreateTruck(ctx, logbook.TruckInput{TruckNumber: "T-1", MakeModel: "Mack", Year: fixedNow.Year() + 2, LicensePlate: "P1"})
				return err
			},
			field: "year",
		},
		{
			name: "truck without plate",
			create: func() error {
				_, err := svc.CreateTruck(ctx, logbook.TruckInput{TruckNumber: "T-1", MakeModel: "Mack", Year: 2020})
				return err
			},
			field: "licensePlate",
		},
		{
			name: "unknown trailer type",
			create: func() error {
				_, err := svc.CreateTrailer(ctx, logbook.TrailerInput{TrailerNumber: "TR-1", Type: "van", Capacity: "53 ft"})
				return err
			},
			field: "trailerType",
		},
		{
			name: "trailer without capacity",
			create: func() error {
				_, err := svc.CreateTrailer(ctx, logbook.TrailerInput{TrailerNumber: "TR-1", Type: logbook.TrailerBox})
				return err
			},
			field: "capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFieldError(t, tt.create(), tt.field)
		})
	}
}

func TestService_FleetNotFound(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.GetDriver(ctx, 99); !errors.Is(err, logbook.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
	if _, err := svc.GetTruck(ctx, 99); !errors.Is(err, logbook.ErrTruckNotFound) {
		t.Errorf("expected ErrTruckNotFound, got %v", err)
	}
	if _, err := svc.GetTrailer(ctx, 99); !errors.Is(err, logbook.ErrTrailerNotFound) {
		t.Errorf("expected ErrTrailerNotFound, got %v", err)
	}
}

func TestService_LogBook_Crew(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	d := createDriver(t, svc, "TX-1234567")
	truck, err := svc.CreateTruck(ctx, logbook.TruckInput{TruckNumber: "T-101", MakeModel: "Freightliner Cascadia", Year: 2022, LicensePlate: "ABC1234"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trailer, err := svc.CreateTrailer(ctx, logbook.TrailerInput{TrailerNumber: "TR-55", Type: logbook.TrailerRefrigerated, Capacity: "53 ft"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unknownCoDriver := int64(404)
	l, err := svc.CreateDailyLog(ctx, logbook.CreateDailyLogInput{
		DriverID:   d.ID,
		CoDriverID: &unknownCoDriver,
		TruckID:    truck.ID,
		TrailerID:  trailer.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.LogBook(ctx, l.ID, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Crew.Driver == nil || view.Crew.Driver.FullName() != "Ana Ruiz" {
		t.Errorf("expected driver Ana Ruiz, got %+v", view.Crew.Driver)
	}
	if view.Crew.CoDriver != nil {
		t.Errorf("expected no record for an unknown co-driver, got %+v", view.Crew.CoDriver)
	}
	if view.Crew.Truck == nil || view.Crew.Truck.TruckNumber != "T-101" {
		t.Errorf("expected truck T-101, got %+v", view.Crew.Truck)
	}
	if view.Crew.Trailer == nil || view.Crew.Trailer.TrailerNumber != "TR-55" {
		t.Errorf("expected trailer TR-55, got %+v", view.Crew.Trailer)
	}
}

func TestService_LogBook_CrewPrefersExpandedRecords(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	d := createDriver(t, svc, "TX-1234567")
	l := &logbook.DailyLog{
		DriverID:  d.ID,
		TruckID:   1,
		TrailerID: 2,
		Status:    logbook.LogStatusActive,
		CreatedAt: fixedNow,
		Driver:    &logbook.Driver{ID: d.ID, FirstName: "Expanded", LastName: "Record"},
		Truck:     &logbook.Truck{ID: 1, TruckNumber: "T-7"},
	}
	if err := repo.CreateDailyLog(ctx, l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := svc.LogBook(ctx, l.ID, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := view.Crew.Driver.FullName(); got != "Expanded Record" {
		t.Errorf("expected the record on the log, got %q", got)
	}
	if view.Crew.Truck.TruckNumber != "T-7" {
		t.Errorf("expected truck T-7, got %q", view.Crew.Truck.TruckNumber)
	}
}

// idsOnly hides the fleet methods of a repository.
type idsOnly struct {
	logbook.Repository
}

func TestService_FleetUnsupported(t *testing.T) {
	svc := logbook.NewService(idsOnly{logbook.NewInMemoryRepository()}).WithClock(func() time.Time { return fixedNow })
	ctx := context.Background()

	if svc.HasFleet() {
		t.Fatal("expected no fleet")
	}
	if _, err := svc.ListDrivers(ctx); !errors.Is(err, logbook.ErrFleetUnsupported) {
		t.Errorf("expected ErrFleetUnsupported, got %v", err)
	}

	l := createLog(t, svc, 7)
	view, err := svc.LogBook(ctx, l.ID, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Crew != (logbook.Crew{}) {
		t.Errorf("expected an empty crew, got %+v", view.Crew)
	}
}
