// Package cache decorates repositories with a read-through TTL cache.
package cache

import (
	"context"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	basecache "github.com/riskibarqy/bloodbowl-league/internal/platform/cache"
)

const competitionKeyPrefix = "competition:id:"

// CompetitionRepository caches lookups by id, including misses. Create drops
// the cached entry for the new id.
type CompetitionRepository struct {
	next  competition.Repository
	cache *basecache.Store
}

func NewCompetitionRepository(next competition.Repository, cache *basecache.Store) *CompetitionRepository {
	return &CompetitionRepository{next: next, cache: cache}
}

func (r *CompetitionRepository) Create(ctx context.Context, item competition.Competition) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, competitionKeyPrefix+item.ID)
	return nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, competitionKeyPrefix+competitionID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		return cachedCompetition{value: item, exists: exists}, nil
	})
	if err != nil {
		return competition.Competition{}, false, err
	}

	cached, _ := v.(cachedCompetition)
	return cached.value, cached.exists, nil
}

// GetByIDForUpdate always reaches the wrapped repository so the row lock is
// taken.
func (r *CompetitionRepository) GetByIDForUpdate(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	return r.next.GetByIDForUpdate(ctx, competitionID)
}

type cachedCompetition struct {
	value  competition.Competition
	exists bool
}
