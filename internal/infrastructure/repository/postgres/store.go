// Package postgres implements the repositories on PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/txn"
)

// Store hands out repositories bound to the pool, and runs units of work on
// a single transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Competitions() *CompetitionRepository {
	return &CompetitionRepository{db: s.db}
}

func (s *Store) Rosters() *RosterRepository {
	return &RosterRepository{db: s.db}
}

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{db: s.db}
}

func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, txn.Repositories{
		Competitions: &CompetitionRepository{db: tx},
		Rosters:      &RosterRepository{db: tx},
		Matches:      &MatchRepository{db: tx},
		Events:       &EventRepository{db: tx},
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}
