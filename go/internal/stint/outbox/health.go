package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	LastEventTime     time.Time `json:"last_event_time"`
	EventsProcessed   uint64    `json:"events_processed"`
	PendingEvents     int       `json:"pending_events"`
	DatabaseConnected bool      `json:"database_connected"`
	BrokerConnected   bool      `json:"broker_connected"`
	RelayActive       bool      `json:"relay_active"`
	Errors            []string  `json:"errors"`
}

// Pinger checks the database connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker reports on the relay and the connections it depends on.
type HealthChecker struct {
	relay     *Relay
	db        Pinger
	broker    func() bool
	clock     clockwork.Clock
	threshold time.Duration // How long pending events may wait before unhealthy
	maxLag    int
}

func NewHealthChecker(relay *Relay, db Pinger, broker func() bool, clock clockwork.Clock, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		relay:     relay,
		db:        db,
		broker:    broker,
		clock:     clock,
		threshold: threshold,
		maxLag:    1000,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.EventsProcessed, status.LastEventTime = h.relay.Stats()

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.broker != nil {
		status.BrokerConnected = h.broker()
		if !status.BrokerConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	status.RelayActive = h.relay.Running()
	if !status.RelayActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not active")
	}

	if status.DatabaseConnected {
		pending, err := h.relay.repo.CountUnsent(ctx)
		if err != nil {
			status.Errors = append(status.Errors, err.Error())
		} else {
			status.PendingEvents = pending
			if pending > h.maxLag {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
			}
		}
	}

	if status.PendingEvents > 0 && !status.LastEventTime.IsZero() {
		since := h.clock.Since(status.LastEventTime)
		if since > h.threshold {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("no events processed for %s", since))
		}
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
