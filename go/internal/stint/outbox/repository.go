package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/stint/go/internal/stint/repository/db"
)

// ErrAlreadySent is returned when a notified row was relayed by the fallback
// poll first.
var ErrAlreadySent = errors.New("outbox event not found or already sent")

// Querier is the slice of the generated queries the outbox uses.
type Querier interface {
	InsertOutbox(ctx context.Context, arg db.InsertOutboxParams) error
	FetchUnsentOutbox(ctx context.Context, limit int32) ([]db.StintOutbox, error)
	FetchOutboxByID(ctx context.Context, id uuid.UUID) (db.StintOutbox, error)
	MarkOutboxSent(ctx context.Context, id uuid.UUID) error
	CountUnsentOutbox(ctx context.Context) (int64, error)
}

type Repository struct {
	queries Querier
}

func NewRepository(queries Querier) *Repository {
	return &Repository{
		queries: queries,
	}
}

func (r *Repository) Insert(ctx context.Context, sessionKey string, payload []byte) (uuid.UUID, error) {
	id := uuid.New()
	err := r.queries.InsertOutbox(ctx, db.InsertOutboxParams{
		ID:         id,
		SessionKey: sessionKey,
		Payload:    payload,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return id, nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]Event, error) {
	rows, err := r.queries.FetchUnsentOutbox(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	out := make([]Event, len(rows))
	for i, row := range rows {
		out[i] = rowToEvent(row)
	}
	return out, nil
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	row, err := r.queries.FetchOutboxByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadySent
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	ev := rowToEvent(row)
	return &ev, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if err := r.queries.MarkOutboxSent(ctx, id); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

func (r *Repository) CountUnsent(ctx context.Context) (int, error) {
	n, err := r.queries.CountUnsentOutbox(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox events: %w", err)
	}
	return int(n), nil
}

func rowToEvent(row db.StintOutbox) Event {
	return Event{
		ID:         row.ID,
		SessionKey: row.SessionKey,
		Payload:    row.Payload,
		CreatedAt:  row.CreatedAt,
	}
}
