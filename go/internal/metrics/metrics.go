// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stint"

// Registry owns every collector and the registry they are served from.
type Registry struct {
	reg *prometheus.Registry

	stintStatus     *prometheus.CounterVec
	cascades        *prometheus.CounterVec
	handTimeouts    prometheus.Counter
	sweepDuration   prometheus.Histogram
	notifications   *prometheus.CounterVec
	outboxEvents    *prometheus.CounterVec
	outboxDuration  *prometheus.HistogramVec
	outboxBatch     prometheus.Histogram
	outboxLag       prometheus.Gauge
	publishAttempts *prometheus.CounterVec
}

// New registers the engine collectors together with the Go and process
// collectors on a fresh registry.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		stintStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Stint status transitions by target status.",
		}, []string{"status"}),
		cascades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascades_total",
			Help:      "Stint cancellations triggered by hand status changes.",
		}, []string{"cascade"}),
		handTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hand_timeouts_total",
			Help:      "Hands moved to timedout by the liveness sweep.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of one liveness sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification batches handed to the notifier.",
		}, []string{"status"}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Outbox events relayed, by event type and result.",
		}, []string{"event_type", "status"}),
		outboxDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing one outbox event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		outboxBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "batch_size",
			Help:      "Events fetched per relay batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		outboxLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "lag",
			Help:      "Unsent outbox events seen by the last relay batch.",
		}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_attempts_total",
			Help:      "Publish attempts by event type, attempt number and result.",
		}, []string{"event_type", "attempt", "status"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.stintStatus,
		r.cascades,
		r.handTimeouts,
		r.sweepDuration,
		r.notifications,
		r.outboxEvents,
		r.outboxDuration,
		r.outboxBatch,
		r.outboxLag,
		r.publishAttempts,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (r *Registry) RecordStintStatus(status string) {
	r.stintStatus.WithLabelValues(status).Inc()
}

func (r *Registry) RecordCascade(cascade string) {
	r.cascades.WithLabelValues(cascade).Inc()
}

func (r *Registry) RecordNotification(ok bool) {
	r.notifications.WithLabelValues(result(ok)).Inc()
}

// RecordSweep records one liveness sweep.
func (r *Registry) RecordSweep(d time.Duration, timedOut int) {
	r.sweepDuration.Observe(d.Seconds())
	r.handTimeouts.Add(float64(timedOut))
}

func (r *Registry) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	r.outboxEvents.WithLabelValues(eventType, result(success)).Inc()
	r.outboxDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (r *Registry) RecordBatchProcessed(count int, duration time.Duration) {
	r.outboxBatch.Observe(float64(count))
}

func (r *Registry) RecordOutboxLag(lag int) {
	r.outboxLag.Set(float64(lag))
}

func (r *Registry) RecordPublishAttempt(eventType string, attempt int, success bool) {
	r.publishAttempts.WithLabelValues(eventType, strconv.Itoa(attempt), result(success)).Inc()
}
