package tripapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/timeline"
)

type dailyLogWire struct {
	ID        int64            `json:"id,omitempty"`
	Driver    ref[driverWire]  `json:"driver"`
	CoDriver  *ref[driverWire] `json:"co_driver"`
	Truck     ref[truckWire]   `json:"truck"`
	Trailer   ref[trailerWire] `json:"trailer"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at,omitzero"`
	UpdatedAt time.Time        `json:"updated_at,omitzero"`
}

func (w dailyLogWire) toDomain() *logbook.DailyLog {
	l := &logbook.DailyLog{
		ID:        w.ID,
		DriverID:  w.Driver.ID,
		TruckID:   w.Truck.ID,
		TrailerID: w.Trailer.ID,
		Status:    logbook.LogStatus(w.Status),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if r := w.Driver.Record; r != nil {
		l.Driver = r.toDomain()
	}
	if w.CoDriver != nil {
		id := w.CoDriver.ID
		l.CoDriverID = &id
		if r := w.CoDriver.Record; r != nil {
			l.CoDriver = r.toDomain()
		}
	}
	if r := w.Truck.Record; r != nil {
		l.Truck = r.toDomain()
	}
	if r := w.Trailer.Record; r != nil {
		l.Trailer = r.toDomain()
	}
	return l
}

func dailyLogFromDomain(l *logbook.DailyLog) dailyLogWire {
	w := dailyLogWire{
		Driver:  ref[driverWire]{ID: l.DriverID},
		Truck:   ref[truckWire]{ID: l.TruckID},
		Trailer: ref[trailerWire]{ID: l.TrailerID},
		Status:  string(l.Status),
	}
	if l.CoDriverID != nil {
		w.CoDriver = &ref[driverWire]{ID: *l.CoDriverID}
	}
	return w
}

// keyed is a record the backend may nest in place of its id.
type keyed interface {
	key() int64
}

// ref is a foreign key served either as a bare id or as the expanded record.
// It is always written as the id.
type ref[T keyed] struct {
	ID     int64
	Record *T
}

func (r *ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return json.Unmarshal(data, &r.ID)
	}
	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	r.ID, r.Record = record.key(), &record
	return nil
}

func (r ref[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

type driverWire struct {
	ID            int64     `json:"id"`
	User          userWire  `json:"user"`
	LicenseNumber string    `json:"license_number"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (w driverWire) key() int64 { return w.ID }

func (w driverWire) toDomain() *logbook.Driver {
	return &logbook.Driver{
		ID:            w.ID,
		FirstName:     w.User.FirstName,
		LastName:      w.User.LastName,
		LicenseNumber: w.LicenseNumber,
		Phone:         w.Phone,
		Address:       w.Address,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// userWire is the account behind a driver. A bare user id leaves it empty.
type userWire struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *userWire) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	type plain userWire
	return json.Unmarshal(data, (*plain)(u))
}

type truckWire struct {
	ID           int64     `json:"id"`
	TruckNumber  string    `json:"truck_number"`
	MakeModel    string    `json:"make_model"`
	Year         int       `json:"year"`
	LicensePlate string    `json:"license_plate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (w truckWire) key() int64 { return w.ID }

func (w truckWire) toDomain() *logbook.Truck {
	return &logbook.Truck{
		ID:           w.ID,
		TruckNumber:  w.TruckNumber,
		MakeModel:    w.MakeModel,
		Year:         w.Year,
		LicensePlate: w.LicensePlate,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

type trailerWire struct {
	ID            int64     `json:"id"`
	TrailerNumber string    `json:"trailer_number"`
	TrailerType   string    `json:"trailer_type"`
	Capacity      string    `json:"capacity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (w trailerWire) key() int64 { return w.ID }

func (w trailerWire) toDomain() *logbook.Trailer {
	return &logbook.Trailer{
		ID:            w.ID,
		TrailerNumber: w.TrailerNumber,
		Type:          logbook.TrailerType(w.TrailerType),
		Capacity:      w.Capacity,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

type dutyStatusWire struct {
	ID              int64       `json:"id,omitempty"`
	DailyLog        int64       `json:"daily_log"`
	DutyStatus      string      `json:"duty_status"`
	LocationAddress string      `json:"location_address"`
	Latitude        *coordinate `json:"latitude"`
	Longitude       *coordinate `json:"longitude"`
	Timestamp       time.Time   `json:"timestamp"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at,omitzero"`
}

func (w dutyStatusWire) toDomain() *logbook.DutyStatus {
	return &logbook.DutyStatus{
		ID:              w.ID,
		DailyLogID:      w.DailyLog,
		Status:          timeline.Status(w.DutyStatus),
		LocationAddress: w.LocationAddress,
		Latitude:        w.Latitude.float(),
		Longitude:       w.Longitude.float(),
		Timestamp:       w.Timestamp,
		Notes:           w.Notes,
		CreatedAt:       w.CreatedAt,
	}
}

func dutyStatusFromDomain(s *logbook.DutyStatus) dutyStatusWire {
	return dutyStatusWire{
		DailyLog:        s.DailyLogID,
		DutyStatus:      string(s.Status),
		LocationAddress: s.LocationAddress,
		Latitude:        newCoordinate(s.Latitude),
		Longitude:       newCoordinate(s.Longitude),
		Timestamp:       s.Timestamp,
		Notes:           s.Notes,
	}
}

// coordinate accepts decimal degrees as a JSON number or a JSON string.
type coordinate float64

func newCoordinate(f *float64) *coordinate {
	if f == nil {
		return nil
	}
	c := coordinate(*f)
	return &c
}

func (c *coordinate) float() *float64 {
	if c == nil {
		return nil
	}
	f := float64(*c)
	return &f
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", data, err)
	}
	*c = coordinate(f)
	return nil
}

func (c coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(c))
}

// DecodeDutyStatuses parses a JSON array of duty statuses as the trips
// backend serves them.
func DecodeDutyStatuses(data []byte) ([]*logbook.DutyStatus, error) {
	var wires []dutyStatusWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("decode duty statuses: %w", err)
	}
	statuses := make([]*logbook.DutyStatus, 0, len(wires))
	for _, w := range wires {
		statuses = append(statuses, w.toDomain())
	}
	return statuses, nil
}
