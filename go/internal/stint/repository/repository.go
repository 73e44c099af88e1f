// Package repository is the Postgres implementation of store.Store.
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/sqlutil"
	"github.com/mcdev12/stint/go/internal/stint/repository/db"
	"github.com/mcdev12/stint/go/internal/stint/store"
)

// Schema creates every table the repository and the outbox use. It is safe to
// run repeatedly.
//
//go:embed schema.sql
var Schema string

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Repository implements store.Store on top of the sqlc queries.
type Repository struct {
	db      *sql.DB
	queries *db.Queries
}

var _ store.Store = (*Repository)(nil)

// NewRepository creates a repository on an open connection pool.
func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		db:      conn,
		queries: db.New(conn),
	}
}

// Atomic runs fn inside a transaction. Nested calls join the transaction
// already in progress.
func (r *Repository) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	if r.db == nil {
		return fn(r)
	}
	return sqlutil.Run(ctx, r.db,
		func(tx *sql.Tx) *db.Queries { return r.queries.WithTx(tx) },
		func(q *db.Queries) error { return fn(&Repository{queries: q}) },
	)
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func duplicate(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

func updated(n int64, err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func (r *Repository) CreateStint(ctx context.Context, s *models.Stint) error {
	err := r.queries.CreateStint(ctx, db.CreateStintParams{
		ID:              s.ID,
		SpecificationID: s.SpecificationID,
		Status:          string(s.Status),
		LateArrival:     s.LateArrival,
		StartedBy:       sqlutil.ToNullUUID(s.StartedBy),
		StoppedBy:       sqlutil.ToNullUUID(s.StoppedBy),
		Started:         sqlutil.ToSqlTime(s.Started),
		Ended:           sqlutil.ToSqlTime(s.Ended),
		CreatedAt:       s.CreatedAt,
	})
	if err != nil {
		return duplicate(err, "stint")
	}
	return nil
}

func (r *Repository) GetStint(ctx context.Context, id uuid.UUID) (*models.Stint, error) {
	row, err := r.queries.GetStint(ctx, id)
	if err != nil {
		return nil, notFound(err, "stint")
	}
	return dbStintToModel(row), nil
}

func (r *Repository) UpdateStint(ctx context.Context, s *models.Stint) error {
	n, err := r.queries.UpdateStint(ctx, db.UpdateStintParams{
		ID:          s.ID,
		Status:      string(s.Status),
		LateArrival: s.LateArrival,
		StartedBy:   sqlutil.ToNullUUID(s.StartedBy),
		StoppedBy:   sqlutil.ToNullUUID(s.StoppedBy),
		Started:     sqlutil.ToSqlTime(s.Started),
		Ended:       sqlutil.ToSqlTime(s.Ended),
	})
	return updated(n, err, "stint")
}

func (r *Repository) ListStintsByStatus(ctx context.Context, status models.StintStatus) ([]*models.Stint, error) {
	rows, err := r.queries.ListStintsByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list stints: %w", err)
	}
	out := make([]*models.Stint, len(rows))
	for i, row := range rows {
		out[i] = dbStintToModel(row)
	}
	return out, nil
}

func (r *Repository) CreateHand(ctx context.Context, h *models.Hand) error {
	err := r.queries.CreateHand(ctx, db.CreateHandParams{
		ID:                  h.ID,
		StintID:             h.StintID,
		UserID:              sqlutil.ToNullUUID(h.UserID),
		RobotID:             sqlutil.ToNullUUID(h.RobotID),
		Frontend:            string(h.Frontend),
		Status:              string(h.Status),
		CurrentModuleID:     sqlutil.ToNullUUID(h.CurrentModuleID),
		StageID:             sqlutil.ToNullUUID(h.StageID),
		EraID:               h.EraID,
		CurrentTeamID:       sqlutil.ToNullUUID(h.CurrentTeamID),
		CurrentBreadcrumbID: sqlutil.ToNullUUID(h.CurrentBreadcrumbID),
		LastSeen:            sqlutil.ToSqlTime(h.LastSeen),
		CurrentPayoff:       h.CurrentPayoff,
		CreatedAt:           h.CreatedAt,
	})
	if err != nil {
		return duplicate(err, "hand")
	}
	return nil
}

func (r *Repository) GetHand(ctx context.Context, id uuid.UUID) (*models.Hand, error) {
	row, err := r.queries.GetHand(ctx, id)
	if err != nil {
		return nil, notFound(err, "hand")
	}
	return dbHandToModel(row), nil
}

func (r *Repository) UpdateHand(ctx context.Context, h *models.Hand) error {
	n, err := r.queries.UpdateHand(ctx, db.UpdateHandParams{
		ID:                  h.ID,
		UserID:              sqlutil.ToNullUUID(h.UserID),
		RobotID:             sqlutil.ToNullUUID(h.RobotID),
		Frontend:            string(h.Frontend),
		Status:              string(h.Status),
		CurrentModuleID:     sqlutil.ToNullUUID(h.CurrentModuleID),
		StageID:             sqlutil.ToNullUUID(h.StageID),
		EraID:               h.EraID,
		CurrentTeamID:       sqlutil.ToNullUUID(h.CurrentTeamID),
		CurrentBreadcrumbID: sqlutil.ToNullUUID(h.CurrentBreadcrumbID),
		LastSeen:            sqlutil.ToSqlTime(h.LastSeen),
		CurrentPayoff:       h.CurrentPayoff,
	})
	return updated(n, err, "hand")
}

func (r *Repository) ListHands(ctx context.Context, stintID uuid.UUID) ([]*models.Hand, error) {
	rows, err := r.queries.ListHands(ctx, stintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hands: %w", err)
	}
	return dbHandsToModels(rows), nil
}

func (r *Repository) CreateTeam(ctx context.Context, t *models.Team) error {
	err := r.queries.CreateTeam(ctx, db.CreateTeamParams{
		ID:      t.ID,
		StintID: t.StintID,
		Name:    t.Name,
		EraID:   t.EraID,
	})
	if err != nil {
		return duplicate(err, "team")
	}
	return nil
}

func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row, err := r.queries.GetTeam(ctx, id)
	if err != nil {
		return nil, notFound(err, "team")
	}
	return dbTeamToModel(row), nil
}

func (r *Repository) UpdateTeam(ctx context.Context, t *models.Team) error {
	n, err := r.queries.UpdateTeam(ctx, db.UpdateTeamParams{
		ID:    t.ID,
		Name:  t.Name,
		EraID: t.EraID,
	})
	return updated(n, err, "team")
}

func (r *Repository) ListTeams(ctx context.Context, stintID uuid.UUID) ([]*models.Team, error) {
	rows, err := r.queries.ListTeams(ctx, stintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	out := make([]*models.Team, len(rows))
	for i, row := range rows {
		out[i] = dbTeamToModel(row)
	}
	return out, nil
}

func (r *Repository) AddTeamHand(ctx context.Context, teamID, handID uuid.UUID) error {
	err := r.queries.AddTeamHand(ctx, db.AddTeamHandParams{TeamID: teamID, HandID: handID})
	if err != nil {
		return fmt.Errorf("failed to add team hand: %w", err)
	}
	return nil
}

func (r *Repository) ListTeamHands(ctx context.Context, teamID uuid.UUID) ([]*models.Hand, error) {
	rows, err := r.queries.ListTeamHands(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team hands: %w", err)
	}
	return dbHandsToModels(rows), nil
}

func (r *Repository) CreateModule(ctx context.Context, m *models.Module) error {
	err := r.queries.CreateModule(ctx, db.CreateModuleParams{
		ID:                 m.ID,
		StintID:            m.StintID,
		ModuleDefinitionID: m.ModuleDefinitionID,
		Ord:                int32(m.Order),
	})
	if err != nil {
		return duplicate(err, "module")
	}
	return nil
}

func (r *Repository) GetModule(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	row, err := r.queries.GetModule(ctx, id)
	if err != nil {
		return nil, notFound(err, "module")
	}
	return dbModuleToModel(row), nil
}

func (r *Repository) ListModules(ctx context.Context, stintID uuid.UUID) ([]*models.Module, error) {
	rows, err := r.queries.ListModules(ctx, stintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	out := make([]*models.Module, len(rows))
	for i, row := range rows {
		out[i] = dbModuleToModel(row)
	}
	return out, nil
}

func (r *Repository) CreateStage(ctx context.Context, s *models.Stage) error {
	err := r.queries.CreateStage(ctx, db.CreateStageParams{
		ID:                s.ID,
		StageDefinitionID: s.StageDefinitionID,
		PreactionStarted:  s.PreActionStarted,
	})
	if err != nil {
		return duplicate(err, "stage")
	}
	return nil
}

func (r *Repository) GetStage(ctx context.Context, id uuid.UUID) (*models.Stage, error) {
	row, err := r.queries.GetStage(ctx, id)
	if err != nil {
		return nil, notFound(err, "stage")
	}
	return &models.Stage{
		ID:                row.ID,
		StageDefinitionID: row.StageDefinitionID,
		PreActionStarted:  row.PreactionStarted,
	}, nil
}

func (r *Repository) UpdateStage(ctx context.Context, s *models.Stage) error {
	n, err := r.queries.UpdateStage(ctx, db.UpdateStageParams{
		ID:               s.ID,
		PreactionStarted: s.PreActionStarted,
	})
	return updated(n, err, "stage")
}

func (r *Repository) CreateBreadcrumb(ctx context.Context, b *models.StageBreadcrumb) error {
	err := r.queries.CreateBreadcrumb(ctx, db.CreateBreadcrumbParams{
		ID:         b.ID,
		HandID:     b.HandID,
		StageID:    b.StageID,
		PreviousID: sqlutil.ToNullUUID(b.PreviousID),
		NextID:     sqlutil.ToNullUUID(b.NextID),
	})
	if err != nil {
		return duplicate(err, "breadcrumb")
	}
	return nil
}

func (r *Repository) GetBreadcrumb(ctx context.Context, id uuid.UUID) (*models.StageBreadcrumb, error) {
	row, err := r.queries.GetBreadcrumb(ctx, id)
	if err != nil {
		return nil, notFound(err, "breadcrumb")
	}
	return &models.StageBreadcrumb{
		ID:         row.ID,
		HandID:     row.HandID,
		StageID:    row.StageID,
		PreviousID: sqlutil.FromNullUUID(row.PreviousID),
		NextID:     sqlutil.FromNullUUID(row.NextID),
	}, nil
}

func (r *Repository) UpdateBreadcrumb(ctx context.Context, b *models.StageBreadcrumb) error {
	n, err := r.queries.UpdateBreadcrumb(ctx, db.UpdateBreadcrumbParams{
		ID:         b.ID,
		PreviousID: sqlutil.ToNullUUID(b.PreviousID),
		NextID:     sqlutil.ToNullUUID(b.NextID),
	})
	return updated(n, err, "breadcrumb")
}

func (r *Repository) CreateVariable(ctx context.Context, v *models.Variable) error {
	value, err := sqlutil.ToNullJSON(v.Value)
	if err != nil {
		return err
	}
	err = r.queries.CreateVariable(ctx, db.CreateVariableParams{
		ID:           v.ID,
		DefinitionID: v.DefinitionID,
		Scope:        string(v.Scope),
		ModuleID:     v.ModuleID,
		OwnerID:      v.OwnerID,
		Value:        value,
	})
	if err != nil {
		return duplicate(err, "variable "+v.DefinitionID)
	}
	return nil
}

func (r *Repository) GetVariable(ctx context.Context, ownerID uuid.UUID, definitionID string) (*models.Variable, error) {
	row, err := r.queries.GetVariable(ctx, db.GetVariableParams{
		OwnerID:      ownerID,
		DefinitionID: definitionID,
	})
	if err != nil {
		return nil, notFound(err, "variable "+definitionID)
	}
	return dbVariableToModel(row)
}

func (r *Repository) UpdateVariable(ctx context.Context, v *models.Variable) error {
	value, err := sqlutil.ToNullJSON(v.Value)
	if err != nil {
		return err
	}
	n, err := r.queries.UpdateVariable(ctx, db.UpdateVariableParams{
		ID:    v.ID,
		Value: value,
	})
	return updated(n, err, "variable "+v.DefinitionID)
}

func (r *Repository) ListVariables(ctx context.Context, ownerID uuid.UUID) ([]*models.Variable, error) {
	rows, err := r.queries.ListVariables(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	out := make([]*models.Variable, len(rows))
	for i, row := range rows {
		v, err := dbVariableToModel(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *Repository) DeleteVariables(ctx context.Context, ownerID uuid.UUID) error {
	if err := r.queries.DeleteVariables(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to delete variables: %w", err)
	}
	return nil
}
