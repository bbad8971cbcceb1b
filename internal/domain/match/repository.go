package match

import (
	"context"
	"errors"
)

// ErrDuplicateID is returned by Insert when the match id is already taken.
var ErrDuplicateID = errors.New("match id already exists")

// ErrNotFound is returned by writes that target a match no longer stored.
var ErrNotFound = errors.New("match not found")

// Filter narrows ListByCompetition. A zero Status returns every match.
type Filter struct {
	Status Status
}

// Repository persists match records.
type Repository interface {
	Insert(ctx context.Context, item Match) error
	InsertMany(ctx context.Context, items []Match) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	// GetByIDForUpdate reads the match and holds a write lock on it until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, matchID string) (Match, bool, error)
	Update(ctx context.Context, item Match) error
	// Delete fails with ErrNotFound when no row was removed.
	Delete(ctx context.Context, matchID string) error
	ListByCompetition(ctx context.Context, competitionID string, filter Filter) ([]Match, error)
	DeleteByStatus(ctx context.Context, competitionID string, status Status) (int, error)
}
