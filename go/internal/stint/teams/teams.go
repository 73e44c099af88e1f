// Package teams forms teams and advances their era once every member has
// reached it.
package teams

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/stint/engine"
)

// SetEra writes the team's era without checking members.
func SetEra(ctx context.Context, ec *engine.Context, team *models.Team, era string) error {
	team.EraID = era
	if err := ec.Store.UpdateTeam(ctx, team); err != nil {
		return fmt.Errorf("failed to update team era: %w", err)
	}
	return nil
}

// Synchronize moves the team to era if every current member hand is already
// there and era is later than the team's current era. It reports whether the
// team advanced. The caller holds the team's lock or the stint's write lock,
// and runs Synchronize in the same transaction that moved the member.
func Synchronize(ctx context.Context, ec *engine.Context, teamID uuid.UUID, era string) (bool, error) {
	team, err := ec.Store.GetTeam(ctx, teamID)
	if err != nil {
		return false, fmt.Errorf("failed to load team: %w", err)
	}
	if era == "" || team.EraID == era {
		return false, nil
	}

	members, err := ec.Store.ListTeamHands(ctx, teamID)
	if err != nil {
		return false, fmt.Errorf("failed to list team hands: %w", err)
	}
	if len(members) == 0 {
		return false, nil
	}
	for _, h := range members {
		if h.EraID != era {
			return false, nil
		}
	}

	if team.EraID != "" {
		later, err := after(ctx, ec, team.StintID, era, team.EraID)
		if err != nil {
			return false, err
		}
		if !later {
			log.Debug().
				Str("team_id", team.ID.String()).
				Str("era", era).
				Str("current_era", team.EraID).
				Msg("refusing to move team to an earlier era")
			return false, nil
		}
	}

	if err := SetEra(ctx, ec, team, era); err != nil {
		return false, err
	}
	log.Info().
		Str("team_id", team.ID.String()).
		Str("era", era).
		Msg("team synchronized")
	return true, nil
}

// after reports whether era a comes after era b in the stint's module and
// era order.
func after(ctx context.Context, ec *engine.Context, stintID uuid.UUID, a, b string) (bool, error) {
	stint, err := ec.Store.GetStint(ctx, stintID)
	if err != nil {
		return false, fmt.Errorf("failed to load stint: %w", err)
	}
	defs, err := ec.Resolve(stint)
	if err != nil {
		return false, err
	}
	ra, err := rank(ec, defs.Stint, a)
	if err != nil {
		return false, err
	}
	rb, err := rank(ec, defs.Stint, b)
	if err != nil {
		return false, err
	}
	return ra > rb, nil
}

func rank(ec *engine.Context, def *models.StintDefinition, era string) (int, error) {
	for i, slug := range def.Modules {
		mod, err := ec.Catalog.ModuleDefinition(slug)
		if err != nil {
			return 0, err
		}
		for j, name := range mod.Eras {
			if mod.EraID(name) == era {
				return i<<16 | j, nil
			}
		}
	}
	return -1, nil
}

// Partition splits hands into consecutive groups of size. The last group may
// be smaller.
func Partition(hands []*models.Hand, size int) [][]*models.Hand {
	if size < 1 {
		size = 1
	}
	var out [][]*models.Hand
	for i := 0; i < len(hands); i += size {
		end := i + size
		if end > len(hands) {
			end = len(hands)
		}
		out = append(out, hands[i:end])
	}
	return out
}

// Form creates the stint's teams and assigns hands to them. Under late
// arrival everybody joins a single team that later arrivals are added to.
func Form(ctx context.Context, ec *engine.Context, stint *models.Stint, hands []*models.Hand, size int) ([]*models.Team, error) {
	groups := Partition(hands, size)
	if stint.LateArrival {
		groups = [][]*models.Hand{hands}
	}

	teams := make([]*models.Team, 0, len(groups))
	for i, group := range groups {
		team := &models.Team{
			ID:      uuid.New(),
			StintID: stint.ID,
			Name:    fmt.Sprintf("team-%d", i),
		}
		if err := ec.Store.CreateTeam(ctx, team); err != nil {
			return nil, fmt.Errorf("failed to create team: %w", err)
		}
		for _, h := range group {
			if err := Join(ctx, ec, team, h); err != nil {
				return nil, err
			}
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// Join adds hand to team and makes it the hand's current team.
func Join(ctx context.Context, ec *engine.Context, team *models.Team, hand *models.Hand) error {
	if err := ec.Store.AddTeamHand(ctx, team.ID, hand.ID); err != nil {
		return fmt.Errorf("failed to add hand to team: %w", err)
	}
	teamID := team.ID
	hand.CurrentTeamID = &teamID
	if err := ec.Store.UpdateHand(ctx, hand); err != nil {
		return fmt.Errorf("failed to update hand team: %w", err)
	}
	return nil
}
