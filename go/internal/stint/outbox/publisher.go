package outbox

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// MsgPublisher is the part of jetstream.JetStream the publisher uses.
type MsgPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamPublisher publishes each batch on its session key. The outbox id
// doubles as the JetStream message id, so a batch relayed twice is stored
// once within the duplicate window.
type JetStreamPublisher struct {
	js     MsgPublisher
	stream string
}

func NewJetStreamPublisher(js MsgPublisher, stream string) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, stream: stream}
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event Event) error {
	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: event.SessionKey,
		Data:    event.Payload,
		Header: nats.Header{
			"Content-Type": []string{"application/json"},
			"Event-ID":     []string{event.ID.String()},
		},
	},
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(p.stream),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", event.SessionKey).
		Str("event_id", event.ID.String()).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")
	return nil
}
