// Package store defines the persistence contract of the stint engine.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/stint/go/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate")
)

// Store is the persistence the engine runs against. Implementations return
// copies; callers write changes back explicitly.
type Store interface {
	CreateStint(ctx context.Context, s *models.Stint) error
	GetStint(ctx context.Context, id uuid.UUID) (*models.Stint, error)
	UpdateStint(ctx context.Context, s *models.Stint) error
	ListStintsByStatus(ctx context.Context, status models.StintStatus) ([]*models.Stint, error)

	CreateHand(ctx context.Context, h *models.Hand) error
	GetHand(ctx context.Context, id uuid.UUID) (*models.Hand, error)
	UpdateHand(ctx context.Context, h *models.Hand) error
	// ListHands returns a stint's hands in creation order.
	ListHands(ctx context.Context, stintID uuid.UUID) ([]*models.Hand, error)

	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error
	// ListTeams returns a stint's teams in creation order.
	ListTeams(ctx context.Context, stintID uuid.UUID) ([]*models.Team, error)
	AddTeamHand(ctx context.Context, teamID, handID uuid.UUID) error
	ListTeamHands(ctx context.Context, teamID uuid.UUID) ([]*models.Hand, error)

	CreateModule(ctx context.Context, m *models.Module) error
	GetModule(ctx context.Context, id uuid.UUID) (*models.Module, error)
	// ListModules returns a stint's modules ordered by Order.
	ListModules(ctx context.Context, stintID uuid.UUID) ([]*models.Module, error)

	CreateStage(ctx context.Context, s *models.Stage) error
	GetStage(ctx context.Context, id uuid.UUID) (*models.Stage, error)
	UpdateStage(ctx context.Context, s *models.Stage) error

	CreateBreadcrumb(ctx context.Context, b *models.StageBreadcrumb) error
	GetBreadcrumb(ctx context.Context, id uuid.UUID) (*models.StageBreadcrumb, error)
	UpdateBreadcrumb(ctx context.Context, b *models.StageBreadcrumb) error

	// CreateVariable fails with ErrDuplicate if (owner, definition) exists.
	CreateVariable(ctx context.Context, v *models.Variable) error
	GetVariable(ctx context.Context, ownerID uuid.UUID, definitionID string) (*models.Variable, error)
	UpdateVariable(ctx context.Context, v *models.Variable) error
	ListVariables(ctx context.Context, ownerID uuid.UUID) ([]*models.Variable, error)
	DeleteVariables(ctx context.Context, ownerID uuid.UUID) error

	// Atomic runs fn against a transactional view of the store. Writes made
	// through tx are discarded if fn returns an error.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
