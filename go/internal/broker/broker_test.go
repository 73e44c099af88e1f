package broker

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

func TestStreamConfig(t *testing.T) {
	sc := DefaultConfig().StreamConfig()
	if sc.Name != "STINT_EVENTS" || sc.Retention != jetstream.LimitsPolicy || sc.Storage != jetstream.FileStorage {
		t.Fatalf("unexpected stream config %+v", sc)
	}
	if len(sc.Subjects) != 2 || sc.Subjects[0] != "stint.>" {
		t.Fatalf("subjects = %v", sc.Subjects)
	}
}

func TestStreamConfigEqual(t *testing.T) {
	base := DefaultConfig().StreamConfig()

	tests := []struct {
		name   string
		change func(*jetstream.StreamConfig)
		equal  bool
	}{
		{"identical", func(*jetstream.StreamConfig) {}, true},
		{"description ignored", func(c *jetstream.StreamConfig) { c.Description = "other" }, true},
		{"max age", func(c *jetstream.StreamConfig) { c.MaxAge = time.Hour }, false},
		{"subjects", func(c *jetstream.StreamConfig) { c.Subjects = []string{"stint.>"} }, false},
		{"subject order", func(c *jetstream.StreamConfig) { c.Subjects = []string{"robots.>", "stint.>"} }, false},
		{"replicas", func(c *jetstream.StreamConfig) { c.Replicas = 3 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			other.Subjects = append([]string(nil), base.Subjects...)
			tt.change(&other)
			if got := streamConfigEqual(base, other); got != tt.equal {
				t.Fatalf("streamConfigEqual = %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestClosedBroker(t *testing.T) {
	var b Broker
	if b.Connected() {
		t.Fatalf("zero broker reports connected")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
