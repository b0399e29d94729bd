package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Publisher queues worker jobs on a Pub/Sub topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewPublisher creates a publisher for topic.
func NewPublisher(ctx context.Context, projectID, topic string, logger zerolog.Logger) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(topic),
		topic:     topic,
		logger:    logger,
	}, nil
}

// PublishSummary queues the summary of a daily log and waits for the server
// to accept it.
func (p *Publisher) PublishSummary(ctx context.Context, dailyLogID int64) error {
	return p.Publish(ctx, Message{JobType: JobDailyLogSummary, DailyLogID: dailyLogID})
}

// Publish queues msg.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"job_type": msg.JobType},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing %s job to %s: %w", msg.JobType, p.topic, err)
	}

	p.logger.Debug().Str("message_id", id).Str("job_type", msg.JobType).Msg("job published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
