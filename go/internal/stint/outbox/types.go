// Package outbox delivers notification batches through a Postgres outbox:
// the sink writes one row per batch, the relay forwards rows to JetStream.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one stored notification batch addressed to a session.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	SessionKey string          `json:"session_key"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Publisher forwards an outbox event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(count int, duration time.Duration)
	RecordOutboxLag(lag int)
	RecordPublishAttempt(eventType string, attempt int, success bool)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordEventProcessed(string, bool, time.Duration) {}
func (NoOpMetricsCollector) RecordBatchProcessed(int, time.Duration)          {}
func (NoOpMetricsCollector) RecordOutboxLag(int)                              {}
func (NoOpMetricsCollector) RecordPublishAttempt(string, int, bool)           {}

// eventType is the metrics label of every relayed batch.
const eventType = "session_batch"
