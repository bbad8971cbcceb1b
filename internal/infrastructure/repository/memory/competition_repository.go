package memory

import (
	"context"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
)

type CompetitionRepository struct {
	guard
}

func (r *CompetitionRepository) Create(_ context.Context, item competition.Competition) error {
	defer r.write()()

	if _, exists := r.store.competitions[item.ID]; exists {
		return competition.ErrDuplicateID
	}
	r.store.competitions[item.ID] = item
	return nil
}

func (r *CompetitionRepository) GetByID(_ context.Context, competitionID string) (competition.Competition, bool, error) {
	defer r.read()()

	item, ok := r.store.competitions[competitionID]
	return item, ok, nil
}

// GetByIDForUpdate is GetByID. The store lock held by a unit of work already
// serializes competition-wide writers.
func (r *CompetitionRepository) GetByIDForUpdate(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	return r.GetByID(ctx, competitionID)
}
