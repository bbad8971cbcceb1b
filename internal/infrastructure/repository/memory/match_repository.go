package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
)

type MatchRepository struct {
	guard
}

func (r *MatchRepository) Insert(ctx context.Context, item match.Match) error {
	return r.InsertMany(ctx, []match.Match{item})
}

// InsertMany stores every item or none of them.
func (r *MatchRepository) InsertMany(_ context.Context, items []match.Match) error {
	defer r.write()()

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, exists := r.store.matches[item.ID]; exists {
			return fmt.Errorf("%w: %s", match.ErrDuplicateID, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s", match.ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	for _, item := range items {
		r.store.matches[item.ID] = matchRow{seq: r.store.nextSeq(), item: item.Clone()}
	}
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	defer r.read()()

	row, ok := r.store.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return row.item.Clone(), true, nil
}

// GetByIDForUpdate is GetByID. Inside a unit of work the store lock already
// excludes other writers.
func (r *MatchRepository) GetByIDForUpdate(ctx context.Context, matchID string) (match.Match, bool, error) {
	return r.GetByID(ctx, matchID)
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	defer r.write()()

	row, ok := r.store.matches[item.ID]
	if !ok {
		return fmt.Errorf("%w: %s", match.ErrNotFound, item.ID)
	}
	row.item = item.Clone()
	r.store.matches[item.ID] = row
	return nil
}

func (r *MatchRepository) Delete(_ context.Context, matchID string) error {
	defer r.write()()

	if _, ok := r.store.matches[matchID]; !ok {
		return fmt.Errorf("%w: %s", match.ErrNotFound, matchID)
	}
	delete(r.store.matches, matchID)
	return nil
}

func (r *MatchRepository) ListByCompetition(_ context.Context, competitionID string, filter match.Filter) ([]match.Match, error) {
	defer r.read()()

	rows := make([]matchRow, 0)
	for _, row := range r.store.matches {
		if row.item.CompetitionID != competitionID {
			continue
		}
		if filter.Status != "" && row.item.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.item.Clone())
	}
	return out, nil
}

func (r *MatchRepository) DeleteByStatus(_ context.Context, competitionID string, status match.Status) (int, error) {
	defer r.write()()

	deleted := 0
	for id, row := range r.store.matches {
		if row.item.CompetitionID == competitionID && row.item.Status == status {
			delete(r.store.matches, id)
			deleted++
		}
	}
	return deleted, nil
}
