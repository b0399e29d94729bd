package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/eldview/eldview/internal/logbook"
)

// Job types carried in Message.JobType.
const (
	JobDailyLogSummary = "daily_log_summary"
	JobSummaryBackfill = "summary_backfill"
	JobHealthCheck     = "health_check"
)

// Message is the payload of a worker job.
type Message struct {
	JobType    string `json:"job_type"`
	DailyLogID int64  `json:"daily_log_id,omitempty"`
	DriverID   int64  `json:"driver_id,omitempty"`
}

// Dispatcher runs the job described by a message payload.
type Dispatcher struct {
	job    *SummaryJob
	pinger logbook.Pinger
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher. pinger may be nil.
func NewDispatcher(job *SummaryJob, pinger logbook.Pinger, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{job: job, pinger: pinger, logger: logger}
}

// Errors that redelivery cannot fix. Messages failing with them are acked.
var (
	// ErrMalformed is returned for payloads that are not a job message.
	ErrMalformed = errors.New("malformed job message")
	// ErrUnknownLog is returned when a job names a daily log the store does
	// not have.
	ErrUnknownLog = errors.New("unknown daily log")
)

// Dispatch runs the job in data. Unknown job types are logged and skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch msg.JobType {
	case JobDailyLogSummary:
		return d.summarize(ctx, msg)
	case JobSummaryBackfill:
		return d.backfill(ctx, msg)
	case JobHealthCheck:
		return d.healthCheck(ctx)
	default:
		d.logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return nil
	}
}

func (d *Dispatcher) summarize(ctx context.Context, msg Message) error {
	if msg.DailyLogID <= 0 {
		return fmt.Errorf("%w: daily_log_id is required", ErrMalformed)
	}

	summary, err := d.job.Summarize(ctx, msg.DailyLogID)
	if errors.Is(err, logbook.ErrDailyLogNotFound) {
		return fmt.Errorf("%w %d", ErrUnknownLog, msg.DailyLogID)
	}
	if err != nil {
		return err
	}

	d.logger.Info().
		Int64("daily_log_id", msg.DailyLogID).
		Int("driving_minutes", summary.DrivingMinutes).
		Msg("daily log summarized")
	return nil
}

func (d *Dispatcher) backfill(ctx context.Context, msg Message) error {
	result, err := d.job.Backfill(ctx, msg.DriverID)
	if err != nil {
		return err
	}

	// Consider it successful if more than half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many summary failures: %d/%d", result.Failed, result.Total)
	}
	return nil
}

func (d *Dispatcher) healthCheck(ctx context.Context) error {
	if d.pinger == nil {
		return nil
	}
	if err := d.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	d.logger.Debug().Msg("health check passed")
	return nil
}

// PubSubHandler receives worker jobs from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if h.handle(ctx, msg.ID, msg.PublishTime, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handle reports whether the message should be acked.
func (h *PubSubHandler) handle(ctx context.Context, id string, published time.Time, data []byte) bool {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", id).
		Str("publish_time", published.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	err := h.dispatcher.Dispatch(ctx, data)
	switch {
	case errors.Is(err, ErrMalformed):
		logger.Error().Err(err).Msg("dropping malformed message")
		return true
	case errors.Is(err, ErrUnknownLog):
		logger.Warn().Err(err).Msg("dropping job for unknown daily log")
		return true
	case err != nil:
		logger.Error().Err(err).Msg("job failed")
		return false
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return true
}
