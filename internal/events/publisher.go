// Package events publishes report lifecycle events to a Redis stream so
// downstream consumers (indexers, notifiers) can react to fresh analyses.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/projectintel/internal/logger"
)

// StreamName is the Redis stream report events are appended to.
const StreamName = "projectintel:events"

// EventReportGenerated marks a freshly generated report.
const EventReportGenerated = "report.generated"

// asyncPublishTimeout bounds fire-and-forget publishes.
const asyncPublishTimeout = 5 * time.Second

// ReportEvent is the payload appended to the stream.
type ReportEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	EventType    string    `json:"event_type"`
	Project      string    `json:"project"`
	OverallScore float64   `json:"overall_score"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher appends report events to Redis Streams. A nil Publisher is a
// valid no-op, covering fallback-only deployments without Redis.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

// NewPublisher creates a publisher. Returns nil when client is nil.
func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{
		client: client,
		log:    log,
	}
}

// Publish appends one event to the stream.
func (p *Publisher) Publish(ctx context.Context, event ReportEvent) error {
	if p == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{"event": string(payload)},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("publish to stream: %w", err)
	}

	p.log.Debug("Published report event",
		logger.String("event_type", event.EventType),
		logger.String("project", event.Project),
		logger.String("stream_id", result.Val()),
	)
	return nil
}

// ReportGenerated publishes a report.generated event asynchronously.
// Errors are logged, never surfaced; event delivery is best-effort.
func (p *Publisher) ReportGenerated(project string, overallScore float64) {
	if p == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		err := p.Publish(ctx, ReportEvent{
			EventType:    EventReportGenerated,
			Project:      project,
			OverallScore: overallScore,
		})
		if err != nil {
			p.log.Warn("Report event publish failed",
				logger.String("project", project),
				logger.Error(err),
			)
		}
	}()
}
