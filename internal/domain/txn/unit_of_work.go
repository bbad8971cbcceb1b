// Package txn defines the transaction boundary shared by match operations.
package txn

import (
	"context"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
)

// Repositories are bound to one unit of work. Writes through them commit or
// roll back together.
type Repositories struct {
	Competitions competition.Repository
	Rosters      roster.Repository
	Matches      match.Repository
	Events       progression.Repository
}

// UnitOfWork runs fn inside a single transaction. A non-nil error from fn
// discards every write made through the supplied repositories.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
