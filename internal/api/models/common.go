// Package models provides the request and response bodies of the eldview API.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PagedResponseMeta carries pagination state. NextCursor is absent on the
// last page.
type PagedResponseMeta struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// NewPagedResponseMeta builds meta for a page whose next cursor is next, or
// 0 when there is no further page.
func NewPagedResponseMeta(limit int, next int64) PagedResponseMeta {
	meta := PagedResponseMeta{Limit: limit}
	if next > 0 {
		s := strconv.FormatInt(next, 10)
		meta.NextCursor = &s
	}
	return meta
}

// HealthStatus is the health of the service or one of its dependencies.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a time.Time that marshals as RFC3339 with the offset it was
// created with.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).Format(time.RFC3339))), nil
}

// UnmarshalJSON implements json.Unmarshaler. RFC3339 with or without
// fractional seconds is accepted; null leaves t unchanged.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero reports whether t is the zero time.
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// TimestampPtr converts an optional time.
func TimestampPtr(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	ts := Timestamp(t)
	return &ts
}
