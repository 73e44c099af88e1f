package repository

import (
	"github.com/mcdev12/stint/go/internal/models"
	"github.com/mcdev12/stint/go/internal/sqlutil"
	"github.com/mcdev12/stint/go/internal/stint/repository/db"
)

func dbStintToModel(row db.Stint) *models.Stint {
	return &models.Stint{
		ID:              row.ID,
		SpecificationID: row.SpecificationID,
		Status:          models.StintStatus(row.Status),
		LateArrival:     row.LateArrival,
		StartedBy:       sqlutil.FromNullUUID(row.StartedBy),
		StoppedBy:       sqlutil.FromNullUUID(row.StoppedBy),
		Started:         sqlutil.FromSqlTime(row.Started),
		Ended:           sqlutil.FromSqlTime(row.Ended),
		CreatedAt:       row.CreatedAt.UTC(),
	}
}

func dbHandToModel(row db.StintHand) *models.Hand {
	return &models.Hand{
		ID:                  row.ID,
		StintID:             row.StintID,
		UserID:              sqlutil.FromNullUUID(row.UserID),
		RobotID:             sqlutil.FromNullUUID(row.RobotID),
		Frontend:            models.Frontend(row.Frontend),
		Status:              models.HandStatus(row.Status),
		CurrentModuleID:     sqlutil.FromNullUUID(row.CurrentModuleID),
		StageID:             sqlutil.FromNullUUID(row.StageID),
		EraID:               row.EraID,
		CurrentTeamID:       sqlutil.FromNullUUID(row.CurrentTeamID),
		CurrentBreadcrumbID: sqlutil.FromNullUUID(row.CurrentBreadcrumbID),
		LastSeen:            sqlutil.FromSqlTime(row.LastSeen),
		CurrentPayoff:       row.CurrentPayoff,
		CreatedAt:           row.CreatedAt.UTC(),
	}
}

func dbHandsToModels(rows []db.StintHand) []*models.Hand {
	out := make([]*models.Hand, len(rows))
	for i, row := range rows {
		out[i] = dbHandToModel(row)
	}
	return out
}

func dbTeamToModel(row db.StintTeam) *models.Team {
	return &models.Team{
		ID:      row.ID,
		StintID: row.StintID,
		Name:    row.Name,
		EraID:   row.EraID,
	}
}

func dbModuleToModel(row db.StintModule) *models.Module {
	return &models.Module{
		ID:                 row.ID,
		StintID:            row.StintID,
		ModuleDefinitionID: row.ModuleDefinitionID,
		Order:              int(row.Ord),
	}
}

func dbVariableToModel(row db.StintVariable) (*models.Variable, error) {
	value, err := sqlutil.FromNullJSON(row.Value)
	if err != nil {
		return nil, err
	}
	return &models.Variable{
		ID:           row.ID,
		DefinitionID: row.DefinitionID,
		Scope:        models.Scope(row.Scope),
		ModuleID:     row.ModuleID,
		OwnerID:      row.OwnerID,
		Value:        value,
	}, nil
}
