// Package memory keeps every aggregate in process memory. It backs the
// default storage driver and the usecase tests.
package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/txn"
)

type rosterRow struct {
	seq  int64
	item roster.Roster
}

type matchRow struct {
	seq  int64
	item match.Match
}

// Store owns the maps shared by the repositories it hands out.
type Store struct {
	mu sync.RWMutex

	seq          int64
	competitions map[string]competition.Competition
	rosters      map[string]rosterRow
	matches      map[string]matchRow
	events       []progression.Event
}

func NewStore() *Store {
	return &Store{
		competitions: make(map[string]competition.Competition),
		rosters:      make(map[string]rosterRow),
		matches:      make(map[string]matchRow),
	}
}

func (s *Store) Competitions() *CompetitionRepository {
	return &CompetitionRepository{guard{store: s}}
}

func (s *Store) Rosters() *RosterRepository {
	return &RosterRepository{guard{store: s}}
}

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{guard{store: s}}
}

func (s *Store) Events() *EventRepository {
	return &EventRepository{guard{store: s}}
}

// Do runs fn while holding the store's write lock. Repositories passed to fn
// skip locking. When fn fails the store is rolled back to its state before
// the call.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(ctx, txn.Repositories{
		Competitions: &CompetitionRepository{guard{store: s, locked: true}},
		Rosters:      &RosterRepository{guard{store: s, locked: true}},
		Matches:      &MatchRepository{guard{store: s, locked: true}},
		Events:       &EventRepository{guard{store: s, locked: true}},
	})
}

type snapshot struct {
	seq          int64
	competitions map[string]competition.Competition
	rosters      map[string]rosterRow
	matches      map[string]matchRow
	events       []progression.Event
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		seq:          s.seq,
		competitions: make(map[string]competition.Competition, len(s.competitions)),
		rosters:      make(map[string]rosterRow, len(s.rosters)),
		matches:      make(map[string]matchRow, len(s.matches)),
		events:       make([]progression.Event, 0, len(s.events)),
	}
	for k, v := range s.competitions {
		snap.competitions[k] = v
	}
	for k, v := range s.rosters {
		snap.rosters[k] = rosterRow{seq: v.seq, item: v.item.Clone()}
	}
	for k, v := range s.matches {
		snap.matches[k] = matchRow{seq: v.seq, item: v.item.Clone()}
	}
	for _, ev := range s.events {
		snap.events = append(snap.events, ev.Clone())
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.seq = snap.seq
	s.competitions = snap.competitions
	s.rosters = snap.rosters
	s.matches = snap.matches
	s.events = snap.events
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// guard takes the store lock for repositories used outside a unit of work.
type guard struct {
	store  *Store
	locked bool
}

func (g guard) read() func() {
	if g.locked {
		return func() {}
	}
	g.store.mu.RLock()
	return g.store.mu.RUnlock
}

func (g guard) write() func() {
	if g.locked {
		return func() {}
	}
	g.store.mu.Lock()
	return g.store.mu.Unlock
}
