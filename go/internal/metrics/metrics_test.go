package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	r := New()
	r.RecordStintStatus("running")
	r.RecordStintStatus("running")
	r.RecordSweep(20*time.Millisecond, 3)
	r.RecordPublishAttempt("hand_events", 2, false)
	r.RecordOutboxLag(7)

	if got := testutil.ToFloat64(r.stintStatus.WithLabelValues("running")); got != 2 {
		t.Fatalf("status changes = %v", got)
	}
	if got := testutil.ToFloat64(r.handTimeouts); got != 3 {
		t.Fatalf("hand timeouts = %v", got)
	}
	if got := testutil.ToFloat64(r.publishAttempts.WithLabelValues("hand_events", "2", "failure")); got != 1 {
		t.Fatalf("publish attempts = %v", got)
	}
	if got := testutil.ToFloat64(r.outboxLag); got != 7 {
		t.Fatalf("lag = %v", got)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.RecordCascade("cancel")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `stint_cascades_total{cascade="cancel"} 1`) {
		t.Fatalf("cascade counter missing from exposition")
	}
}
