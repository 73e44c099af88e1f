package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type RelayConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int32 // Max events to fetch per batch
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		NotifyChannel:    "stint_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// conn is the part of pq.Listener the relay drives.
type conn interface {
	Ping() error
	Close() error
}

// Relay forwards outbox rows to the publisher. New rows arrive through
// LISTEN/NOTIFY; a periodic poll picks up anything a notification missed.
type Relay struct {
	repo      *Repository
	publisher Publisher
	metrics   MetricsCollector
	clock     clockwork.Clock
	cfg       RelayConfig

	conn   conn
	notify <-chan *pq.Notification

	mu        sync.Mutex
	running   bool
	processed uint64
	lastEvent time.Time
}

func NewRelay(repo *Repository, publisher Publisher, metrics MetricsCollector, clock clockwork.Clock, cfg RelayConfig) *Relay {
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		cfg:       cfg,
	}
}

// Listen opens the LISTEN connection.
func (r *Relay) Listen() error {
	l := pq.NewListener(
		r.cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(r.cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", r.cfg.NotifyChannel).
		Msg("listening for notifications")

	r.conn = l
	r.notify = l.Notify
	return nil
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if r.conn == nil {
		if err := r.Listen(); err != nil {
			return err
		}
	}
	r.setRunning(true)
	defer r.setRunning(false)

	log.Info().
		Str("channel", r.cfg.NotifyChannel).
		Dur("ping_interval", r.cfg.PingInterval).
		Dur("fallback_interval", r.cfg.FallbackInterval).
		Msg("relay started")

	pingTicker := r.clock.NewTicker(r.cfg.PingInterval)
	fallbackTicker := r.clock.NewTicker(r.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	if err := r.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("relay shutting down")
			return r.conn.Close()
		case note := <-r.notify:
			if note == nil {
				// the connection was re-established, notifications may have been lost
				if err := r.processUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events")
				}
				continue
			}
			if err := r.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.Chan():
			if err := r.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.Chan():
			if err := r.conn.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// handleNotification relays the row whose id is the notification payload.
func (r *Relay) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	ev, err := r.repo.FetchByID(ctx, id)
	if errors.Is(err, ErrAlreadySent) {
		log.Debug().Str("event_id", id.String()).Msg("outbox event already relayed")
		return nil
	}
	if err != nil {
		return err
	}
	return r.deliver(ctx, *ev)
}

func (r *Relay) processUnsent(ctx context.Context) error {
	start := r.clock.Now()
	unsent, err := r.repo.FetchUnsent(ctx, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	failed := 0
	for _, ev := range unsent {
		if err := r.deliver(ctx, ev); err != nil {
			log.Error().Err(err).Str("event_id", ev.ID.String()).Msg("failed to relay event")
			failed++
		}
	}
	r.metrics.RecordBatchProcessed(len(unsent), r.clock.Since(start))

	if lag, err := r.repo.CountUnsent(ctx); err == nil {
		r.metrics.RecordOutboxLag(lag)
	}
	if len(unsent) > 0 {
		log.Info().
			Int("total", len(unsent)).
			Int("failed", failed).
			Msg("processed unsent outbox events")
	}
	return nil
}

func (r *Relay) deliver(ctx context.Context, ev Event) error {
	start := r.clock.Now()
	err := r.publishWithRetry(ctx, ev)
	r.metrics.RecordEventProcessed(eventType, err == nil, r.clock.Since(start))
	if err != nil {
		return err
	}
	if err := r.repo.MarkSent(ctx, ev.ID); err != nil {
		return err
	}

	r.mu.Lock()
	r.processed++
	r.lastEvent = r.clock.Now()
	r.mu.Unlock()

	log.Debug().Str("event_id", ev.ID.String()).Msg("published and marked event as sent")
	return nil
}

// publishWithRetry attempts to publish an outbox event with a linear backoff.
func (r *Relay) publishWithRetry(ctx context.Context, ev Event) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 && r.cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.publisher.Publish(ctx, ev); err != nil {
			lastErr = err
			r.metrics.RecordPublishAttempt(eventType, attempt+1, false)
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", ev.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		r.metrics.RecordPublishAttempt(eventType, attempt+1, true)
		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", ev.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

func (r *Relay) setRunning(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = running
}

// Running reports whether Run is active.
func (r *Relay) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stats returns how many events were relayed and when the last one went out.
func (r *Relay) Stats() (uint64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed, r.lastEvent
}
