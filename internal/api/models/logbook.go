package models

import "github.com/eldview/eldview/internal/timeline"

// DailyLog is one driver's log for one day.
type DailyLog struct {
	ID         int64     `json:"id"`
	DriverID   int64     `json:"driverId"`
	CoDriverID *int64    `json:"coDriverId,omitempty"`
	TruckID    int64     `json:"truckId"`
	TrailerID  int64     `json:"trailerId"`
	Status     string    `json:"status"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
}

// DailyLogCreateRequest is the body of POST /v1/daily-logs.
type DailyLogCreateRequest struct {
	DriverID   int64  `json:"driverId"`
	CoDriverID *int64 `json:"coDriverId,omitempty"`
	TruckID    int64  `json:"truckId"`
	TrailerID  int64  `json:"trailerId"`
	Status     string `json:"status,omitempty"`
}

// PagedDailyLogs is a page of daily logs, newest first.
type PagedDailyLogs struct {
	Items []DailyLog        `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// DutyStatus is a recorded duty-status change.
type DutyStatus struct {
	ID              int64           `json:"id"`
	DailyLogID      int64           `json:"dailyLogId"`
	DutyStatus      timeline.Status `json:"dutyStatus"`
	Label           string          `json:"label"`
	LocationAddress string          `json:"locationAddress,omitempty"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	Timestamp       Timestamp       `json:"timestamp"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       Timestamp       `json:"createdAt"`
}

// DutyStatusCreateRequest is the body of POST .../duty-statuses.
type DutyStatusCreateRequest struct {
	DutyStatus      timeline.Status `json:"dutyStatus"`
	LocationAddress string          `json:"locationAddress,omitempty"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	Timestamp       Timestamp       `json:"timestamp"`
	Notes           string          `json:"notes,omitempty"`
}

// DutyStatusList is every status of a daily log in timestamp order.
type DutyStatusList struct {
	Items []DutyStatus `json:"items"`
}

// GridRow is one status row of the 24-hour log-book grid.
type GridRow struct {
	Status     timeline.Status `json:"status"`
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	Hours      []GridCell      `json:"hours"`
	TotalHours int             `json:"totalHours"`
}

// GridCell is one hour of a grid row. Dot is the percentage of the first dot
// in the hour and is absent when the hour has none.
type GridCell struct {
	Hour int  `json:"hour"`
	Dot  *int `json:"dot,omitempty"`
}

// LogBook is the log-book view of a daily log. The driver and equipment are
// null when the log store knows only their ids.
type LogBook struct {
	DailyLog       DailyLog            `json:"dailyLog"`
	Driver         *Driver             `json:"driver"`
	CoDriver       *Driver             `json:"coDriver,omitempty"`
	Truck          *Truck              `json:"truck"`
	Trailer        *Trailer            `json:"trailer"`
	Timezone       string              `json:"timezone"`
	Date           string              `json:"date"`
	DutyStatuses   []DutyStatus        `json:"dutyStatuses"`
	DotEvents      []timeline.DotEvent `json:"dotEvents"`
	GlobalTimeline []timeline.DotEvent `json:"globalTimeline"`
	ByStatus       timeline.ByStatus   `json:"byStatus"`
	Totals         timeline.Totals     `json:"totals"`
	TotalHours     int                 `json:"totalHours"`
	Grid           []GridRow           `json:"grid"`
}

// Summary is the stored summary of a daily log.
type Summary struct {
	DailyLogID     int64           `json:"dailyLogId"`
	Totals         timeline.Totals `json:"totals"`
	DrivingMinutes int             `json:"drivingMinutes"`
	ComputedAt     Timestamp       `json:"computedAt"`
}

// RoutePoint is a located duty status on the route of a day.
type RoutePoint struct {
	Point
	Timestamp       Timestamp       `json:"timestamp"`
	DutyStatus      timeline.Status `json:"dutyStatus"`
	LocationAddress string          `json:"locationAddress,omitempty"`
}

// Route is the path of a day as points and as an encoded polyline.
type Route struct {
	DailyLogID int64        `json:"dailyLogId"`
	Points     []RoutePoint `json:"points"`
	Polyline   string       `json:"polyline"`
	DistanceKm float64      `json:"distanceKm"`
}

// Cycle is a driver's use of the rolling driving cycle.
type Cycle struct {
	DriverID       int64     `json:"driverId"`
	WindowStart    Timestamp `json:"windowStart"`
	WindowEnd      Timestamp `json:"windowEnd"`
	LimitHours     float64   `json:"limitHours"`
	UsedHours      float64   `json:"usedHours"`
	RemainingHours float64   `json:"remainingHours"`
}

// TimelineRecord is a duty-status change submitted for a stateless compute.
type TimelineRecord struct {
	ID         int64           `json:"id"`
	Timestamp  Timestamp       `json:"timestamp"`
	DutyStatus timeline.Status `json:"dutyStatus"`
}

// TimelineComputeRequest is the body of POST /v1/timeline:compute. DayStart
// defaults to the day of the earliest record.
type TimelineComputeRequest struct {
	Timezone string           `json:"timezone,omitempty"`
	DayStart *Timestamp       `json:"dayStart,omitempty"`
	Records  []TimelineRecord `json:"records"`
}

// TimelineComputeResponse holds everything derived from the submitted records.
type TimelineComputeResponse struct {
	Timezone       string              `json:"timezone"`
	DayStart       Timestamp           `json:"dayStart"`
	DotEvents      []timeline.DotEvent `json:"dotEvents"`
	GlobalTimeline []timeline.DotEvent `json:"globalTimeline"`
	ByStatus       timeline.ByStatus   `json:"byStatus"`
	Totals         timeline.Totals     `json:"totals"`
	Grid           []GridRow           `json:"grid"`
}

// SimulationRequest is the body of POST /v1/simulations.
type SimulationRequest struct {
	DriverID int64 `json:"driverId"`
}

// SimulatedEvent is one generated duty-status change.
type SimulatedEvent struct {
	Point
	Time       Timestamp       `json:"time"`
	DutyStatus timeline.Status `json:"dutyStatus"`
	Location   string          `json:"location"`
	Notes      string          `json:"notes"`
}

// Simulation is a recorded simulated day.
type Simulation struct {
	DailyLog  DailyLog         `json:"dailyLog"`
	Route     []string         `json:"route"`
	Start     Timestamp        `json:"start"`
	End       Timestamp        `json:"end"`
	SpanHours float64          `json:"spanHours"`
	Events    []SimulatedEvent `json:"events"`
}

// DutyStatusInfo is the display metadata of a duty status.
type DutyStatusInfo struct {
	Value timeline.Status `json:"value"`
	Label string          `json:"label"`
	Color string          `json:"color"`
}

// DutyStatusInfoList is the metadata table of every duty status.
type DutyStatusInfoList struct {
	Items []DutyStatusInfo `json:"items"`
}
