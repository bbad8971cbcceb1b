package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	qb "github.com/riskibarqy/bloodbowl-league/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db dbtx
}

func (r *CompetitionRepository) Create(ctx context.Context, item competition.Competition) error {
	query, args, err := qb.InsertModel("competitions", competitionTableModel{
		PublicID:           item.ID,
		Name:               item.Name,
		CommissionerUserID: item.CommissionerUserID,
		CreatedAt:          item.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert competition query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintCompetitionPublicID {
			return fmt.Errorf("%w: %s", competition.ErrDuplicateID, item.ID)
		}
		return fmt.Errorf("insert competition: %w", err)
	}
	return nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	return r.get(ctx, competitionID, false)
}

func (r *CompetitionRepository) GetByIDForUpdate(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	return r.get(ctx, competitionID, true)
}

func (r *CompetitionRepository) get(ctx context.Context, competitionID string, forUpdate bool) (competition.Competition, bool, error) {
	sel := qb.Select(qb.ModelColumns(competitionTableModel{})...).From("competitions").
		Where(qb.Eq("public_id", competitionID))
	if forUpdate {
		sel = sel.ForUpdate()
	}
	query, args, err := sel.ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build get competition by id query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("get competition by id: %w", err)
	}

	return competition.Competition{
		ID:                 row.PublicID,
		Name:               row.Name,
		CommissionerUserID: row.CommissionerUserID,
		CreatedAt:          row.CreatedAt,
	}, true, nil
}
