package roster

import "context"

// Repository persists roster snapshots.
type Repository interface {
	Create(ctx context.Context, item Roster) error
	GetByID(ctx context.Context, rosterID string) (Roster, bool, error)
	// GetByIDForUpdate reads the roster and holds a write lock on it until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, rosterID string) (Roster, bool, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Roster, error)
	// Update stores item when item.Version matches the stored version and
	// returns the stored roster carrying the incremented version.
	Update(ctx context.Context, item Roster) (Roster, error)
}
