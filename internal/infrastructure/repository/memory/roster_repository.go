package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
)

type RosterRepository struct {
	guard
}

func (r *RosterRepository) Create(_ context.Context, item roster.Roster) error {
	defer r.write()()

	if _, exists := r.store.rosters[item.ID]; exists {
		return fmt.Errorf("roster %s already exists", item.ID)
	}
	if item.Version == 0 {
		item.Version = 1
	}
	r.store.rosters[item.ID] = rosterRow{seq: r.store.nextSeq(), item: item.Clone()}
	return nil
}

func (r *RosterRepository) GetByID(_ context.Context, rosterID string) (roster.Roster, bool, error) {
	defer r.read()()

	row, ok := r.store.rosters[rosterID]
	if !ok {
		return roster.Roster{}, false, nil
	}
	return row.item.Clone(), true, nil
}

// GetByIDForUpdate is GetByID. Inside a unit of work the store lock already
// excludes other writers.
func (r *RosterRepository) GetByIDForUpdate(ctx context.Context, rosterID string) (roster.Roster, bool, error) {
	return r.GetByID(ctx, rosterID)
}

func (r *RosterRepository) ListByCompetition(_ context.Context, competitionID string) ([]roster.Roster, error) {
	defer r.read()()

	rows := make([]rosterRow, 0)
	for _, row := range r.store.rosters {
		if row.item.CompetitionID == competitionID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]roster.Roster, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.item.Clone())
	}
	return out, nil
}

func (r *RosterRepository) Update(_ context.Context, item roster.Roster) (roster.Roster, error) {
	defer r.write()()

	row, ok := r.store.rosters[item.ID]
	if !ok {
		return roster.Roster{}, fmt.Errorf("roster %s not found", item.ID)
	}
	if row.item.Version != item.Version {
		return roster.Roster{}, fmt.Errorf("%w: stored=%d given=%d", roster.ErrStaleVersion, row.item.Version, item.Version)
	}

	item.Version++
	item.CreatedAt = row.item.CreatedAt
	row.item = item.Clone()
	r.store.rosters[item.ID] = row
	return item.Clone(), nil
}
