// Package robots tells the robot runner when a stint with robot hands starts.
package robots

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/stint/errs"
)

const (
	Subject     = "robots.stint_start"
	ActionStart = "STINT_START"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type message struct {
	Action  string    `json:"action"`
	StintID uuid.UUID `json:"stint_id"`
}

// Signaler publishes a start message per stint on the robots subject.
type Signaler struct {
	js      Publisher
	subject string
}

func NewSignaler(js Publisher) *Signaler {
	return &Signaler{js: js, subject: Subject}
}

func (s *Signaler) Signal(ctx context.Context, stintID uuid.UUID) error {
	data, err := json.Marshal(message{Action: ActionStart, StintID: stintID})
	if err != nil {
		return errs.Transport(err, "encode robot signal")
	}
	// one start per stint, even if the signal is retried
	ack, err := s.js.Publish(ctx, s.subject, data, jetstream.WithMsgID("start-"+stintID.String()))
	if err != nil {
		return errs.Transport(err, "signal robots for stint %s", stintID)
	}

	log.Info().
		Str("stint_id", stintID.String()).
		Uint64("sequence", ack.Sequence).
		Msg("robots signalled")
	return nil
}
