package robots

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mcdev12/stint/go/internal/stint/errs"
)

type fakeJS struct {
	subjects []string
	data     [][]byte
	err      error
}

func (f *fakeJS) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subjects = append(f.subjects, subject)
	f.data = append(f.data, data)
	return &jetstream.PubAck{Stream: "STINT_EVENTS", Sequence: uint64(len(f.data))}, nil
}

func TestSignal(t *testing.T) {
	js := &fakeJS{}
	id := uuid.New()

	if err := NewSignaler(js).Signal(context.Background(), id); err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if len(js.subjects) != 1 || js.subjects[0] != Subject {
		t.Fatalf("subjects = %v", js.subjects)
	}
	var msg struct {
		Action  string `json:"action"`
		StintID string `json:"stint_id"`
	}
	if err := json.Unmarshal(js.data[0], &msg); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if msg.Action != "STINT_START" || msg.StintID != id.String() {
		t.Fatalf("payload = %s", js.data[0])
	}
}

func TestSignalFailureIsTransportError(t *testing.T) {
	js := &fakeJS{err: errors.New("no responders")}

	err := NewSignaler(js).Signal(context.Background(), uuid.New())
	if !errors.Is(err, errs.ErrTransport) {
		t.Fatalf("err = %v, want transport error", err)
	}
}
