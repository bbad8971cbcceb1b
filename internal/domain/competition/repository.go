package competition

import (
	"context"
	"errors"
)

var ErrDuplicateID = errors.New("competition id already exists")

// Repository exposes competition persistence.
type Repository interface {
	Create(ctx context.Context, item Competition) error
	GetByID(ctx context.Context, competitionID string) (Competition, bool, error)
	// GetByIDForUpdate locks the competition row for the rest of the
	// surrounding transaction. Writers that span a whole competition take it
	// first.
	GetByIDForUpdate(ctx context.Context, competitionID string) (Competition, bool, error)
}
