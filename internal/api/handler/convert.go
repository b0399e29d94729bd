package handler

import (
	"github.com/eldview/eldview/internal/api/models"
	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/timeline"
)

func toDailyLog(l *logbook.DailyLog) models.DailyLog {
	return models.DailyLog{
		ID:         l.ID,
		DriverID:   l.DriverID,
		CoDriverID: l.CoDriverID,
		TruckID:    l.TruckID,
		TrailerID:  l.TrailerID,
		Status:     string(l.Status),
		CreatedAt:  models.Timestamp(l.CreatedAt),
		UpdatedAt:  models.Timestamp(l.UpdatedAt),
	}
}

func toDriver(d *logbook.Driver) models.Driver {
	return models.Driver{
		ID:            d.ID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		FullName:      d.FullName(),
		LicenseNumber: d.LicenseNumber,
		Phone:         d.Phone,
		Address:       d.Address,
		CreatedAt:     models.Timestamp(d.CreatedAt),
		UpdatedAt:     models.Timestamp(d.UpdatedAt),
	}
}

func toTruck(t *logbook.Truck) models.Truck {
	return models.Truck{
		ID:           t.ID,
		TruckNumber:  t.TruckNumber,
		MakeModel:    t.MakeModel,
		Year:         t.Year,
		LicensePlate: t.LicensePlate,
		CreatedAt:    models.Timestamp(t.CreatedAt),
		UpdatedAt:    models.Timestamp(t.UpdatedAt),
	}
}

func toTrailer(t *logbook.Trailer) models.Trailer {
	return models.Trailer{
		ID:            t.ID,
		TrailerNumber: t.TrailerNumber,
		TrailerType:   string(t.Type),
		Capacity:      t.Capacity,
		CreatedAt:     models.Timestamp(t.CreatedAt),
		UpdatedAt:     models.Timestamp(t.UpdatedAt),
	}
}

// optional converts a record that may be absent.
func optional[T, M any](v *T, convert func(*T) M) *M {
	if v == nil {
		return nil
	}
	m := convert(v)
	return &m
}

func convertAll[T, M any](items []*T, convert func(*T) M) []M {
	out := make([]M, 0, len(items))
	for _, v := range items {
		out = append(out, convert(v))
	}
	return out
}

func toDutyStatus(s *logbook.DutyStatus) models.DutyStatus {
	return models.DutyStatus{
		ID:              s.ID,
		DailyLogID:      s.DailyLogID,
		DutyStatus:      s.Status,
		Label:           s.Status.Label(),
		LocationAddress: s.LocationAddress,
		Latitude:        s.Latitude,
		Longitude:       s.Longitude,
		Timestamp:       models.Timestamp(s.Timestamp),
		Notes:           s.Notes,
		CreatedAt:       models.Timestamp(s.CreatedAt),
	}
}

func toDutyStatuses(statuses []*logbook.DutyStatus) []models.DutyStatus {
	out := make([]models.DutyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toDutyStatus(s))
	}
	return out
}

func toSummary(s *logbook.Summary) models.Summary {
	return models.Summary{
		DailyLogID:     s.DailyLogID,
		Totals:         s.Totals,
		DrivingMinutes: s.DrivingMinutes,
		ComputedAt:     models.Timestamp(s.ComputedAt),
	}
}

// grid lays the dot events out as one row per status with the first dot of
// each hour.
func grid(events []timeline.DotEvent, totals timeline.Totals) []models.GridRow {
	rows := make([]models.GridRow, 0, len(timeline.Statuses))
	for _, status := range timeline.Statuses {
		info := status.Info()
		row := models.GridRow{
			Status:     status,
			Label:      info.Label,
			Color:      info.Color,
			Hours:      make([]models.GridCell, 24),
			TotalHours: totals[status],
		}
		for hour := range 24 {
			row.Hours[hour].Hour = hour
			if timeline.HasDot(events, hour, status) {
				pct := timeline.DotPosition(events, hour, status)
				row.Hours[hour].Dot = &pct
			}
		}
		rows = append(rows, row)
	}
	return rows
}
