// Package tripapi reads and writes daily logs held by the trips backend over
// its REST API.
package tripapi

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/logbook"
	"github.com/eldview/eldview/internal/resilience"
)

const (
	// UpstreamName identifies the trips backend in the resilience registry.
	UpstreamName = "trips-backend"

	// SessionCookieName is the cookie carrying the backend session.
	SessionCookieName = "sessionid"

	defaultListLimit = 50
)

// ErrUnavailable is returned when the backend cannot be reached or fails.
var ErrUnavailable = errors.New("trips backend unavailable")

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8000.
	BaseURL string

	// Session is sent as the session cookie when non-empty.
	Session string

	// HTTPClient defaults to a resilience client named UpstreamName.
	HTTPClient HTTPDoer

	Timeout  time.Duration
	Registry *resilience.Registry
	Logger   zerolog.Logger
}

// Client is a logbook.Repository backed by the trips backend.
type Client struct {
	baseURL string
	session string
	http    HTTPDoer
	logger  zerolog.Logger
}

// NewClient creates a trips backend client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultConfig(UpstreamName)
		if cfg.Timeout > 0 {
			rc.Timeout = cfg.Timeout
		}
		rc.Registry = cfg.Registry
		rc.Logger = cfg.Logger
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		session: cfg.Session,
		http:    httpClient,
		logger:  cfg.Logger,
	}
}

// GetDailyLog retrieves a daily log by ID.
func (c *Client) GetDailyLog(ctx context.Context, id int64) (*logbook.DailyLog, error) {
	var w dailyLogWire
	if err := c.do(ctx, http.MethodGet, dailyLogPath(id), nil, &w); err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// ListDailyLogs lists daily logs, newest first. The backend returns every log
// of the driver, so paging happens here. A negative limit returns all logs.
func (c *Client) ListDailyLogs(ctx context.Context, opts logbook.ListOptions) (*logbook.ListResult, error) {
	path := "/api/daily-logs"
	if opts.DriverID != 0 {
		path += "?" + url.Values{"driver": {strconv.FormatInt(opts.DriverID, 10)}}.Encode()
	}

	var wires []dailyLogWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}

	logs := make([]*logbook.DailyLog, 0, len(wires))
	for _, w := range wires {
		if opts.DriverID != 0 && w.Driver.ID != opts.DriverID {
			continue
		}
		if opts.Cursor != 0 && w.ID >= opts.Cursor {
			continue
		}
		logs = append(logs, w.toDomain())
	}
	slices.SortFunc(logs, func(a, b *logbook.DailyLog) int {
		return cmp.Compare(b.ID, a.ID)
	})

	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	result := &logbook.ListResult{Items: logs}
	if limit > 0 && len(logs) > limit {
		result.Items = logs[:limit]
		result.NextCursor = logs[limit-1].ID
	}
	return result, nil
}

// CreateDailyLog stores a new daily log and sets its ID and timestamps from
// the backend's response.
func (c *Client) CreateDailyLog(ctx context.Context, l *logbook.DailyLog) error {
	var created dailyLogWire
	if err := c.do(ctx, http.MethodPost, "/api/daily-logs", dailyLogFromDomain(l), &created); err != nil {
		return err
	}
	l.ID = created.ID
	if !created.CreatedAt.IsZero() {
		l.CreatedAt = created.CreatedAt
		l.UpdatedAt = created.UpdatedAt
	}
	return nil
}

// ListDutyStatuses lists the duty statuses of a daily log by timestamp.
func (c *Client) ListDutyStatuses(ctx context.Context, dailyLogID int64) ([]*logbook.DutyStatus, error) {
	var wires []dutyStatusWire
	if err := c.do(ctx, http.MethodGet, dailyLogPath(dailyLogID)+"/duty-statuses", nil, &wires); err != nil {
		return nil, err
	}

	statuses := make([]*logbook.DutyStatus, 0, len(wires))
	for _, w := range wires {
		s := w.toDomain()
		s.DailyLogID = dailyLogID
		statuses = append(statuses, s)
	}
	slices.SortStableFunc(statuses, func(a, b *logbook.DutyStatus) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return statuses, nil
}

// ListDriverDutyStatuses lists a driver's duty statuses at or after since,
// preceded by the latest one before since, walking every log of the driver.
func (c *Client) ListDriverDutyStatuses(ctx context.Context, driverID int64, since time.Time) ([]*logbook.DutyStatus, error) {
	logs, err := c.ListDailyLogs(ctx, logbook.ListOptions{DriverID: driverID, Limit: -1})
	if err != nil {
		return nil, err
	}

	var matched []*logbook.DutyStatus
	for _, l := range logs.Items {
		statuses, err := c.ListDutyStatuses(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		matched = append(matched, statuses...)
	}
	slices.SortStableFunc(matched, func(a, b *logbook.DutyStatus) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return logbook.ActiveSince(matched, since), nil
}

// CreateDutyStatus stores a new duty status and sets its ID.
func (c *Client) CreateDutyStatus(ctx context.Context, s *logbook.DutyStatus) error {
	var created dutyStatusWire
	path := dailyLogPath(s.DailyLogID) + "/duty-statuses"
	if err := c.do(ctx, http.MethodPost, path, dutyStatusFromDomain(s), &created); err != nil {
		return err
	}
	s.ID = created.ID
	if !created.CreatedAt.IsZero() {
		s.CreatedAt = created.CreatedAt
	}
	return nil
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/daily-logs?limit=1", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.session})
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("calling trips backend")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return logbook.ErrDailyLogNotFound
	case resilience.Retryable(resp.StatusCode):
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// StatusError is a 4xx answer other than 404 and 429.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("trips backend returned %d: %s", e.StatusCode, e.Body)
}

func dailyLogPath(id int64) string {
	return "/api/daily-logs/" + strconv.FormatInt(id, 10)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Ensure Client implements the logbook interfaces.
var (
	_ logbook.Repository = (*Client)(nil)
	_ logbook.Pinger     = (*Client)(nil)
)
