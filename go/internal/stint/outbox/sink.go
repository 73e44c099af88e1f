package outbox

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/stint/events"
)

// Sink is the engine notifier that stores each batch as an outbox row. The
// relay picks the row up through LISTEN/NOTIFY or the fallback poll.
type Sink struct {
	repo *Repository
}

func NewSink(repo *Repository) *Sink {
	return &Sink{repo: repo}
}

func (s *Sink) Publish(ctx context.Context, sessionKey string, evs []events.Event) error {
	payload, err := events.Encode(evs)
	if err != nil {
		return err
	}
	id, err := s.repo.Insert(ctx, sessionKey, payload)
	if err != nil {
		return fmt.Errorf("failed to enqueue notifications: %w", err)
	}

	log.Debug().
		Str("event_id", id.String()).
		Str("session", sessionKey).
		Int("events", len(evs)).
		Msg("outbox event inserted")
	return nil
}

// LogSink is a notifier that only logs batches. Used when no database outbox
// is configured.
type LogSink struct{}

func (LogSink) Publish(ctx context.Context, sessionKey string, evs []events.Event) error {
	payload, err := events.Encode(evs)
	if err != nil {
		return err
	}
	log.Info().
		Str("session", sessionKey).
		RawJSON("events", payload).
		Msg("notification")
	return nil
}
