package progression

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
)

// ErrEventExists is returned when a match side already has an active event.
var ErrEventExists = errors.New("active progression event already exists")

// Event is the immutable record of one match side applied to one roster.
type Event struct {
	ID                 string
	MatchID            string
	RosterID           string
	CompetitionID      string
	Entries            []match.PlayerEntry
	ClearedSuspensions []string
	RosterVersion      int64
	AppliedAt          time.Time
	RetractedAt        *time.Time
}

func (e Event) Active() bool {
	return e.RetractedAt == nil
}

func (e Event) Clone() Event {
	out := e
	out.Entries = append([]match.PlayerEntry(nil), e.Entries...)
	out.ClearedSuspensions = append([]string(nil), e.ClearedSuspensions...)
	if e.RetractedAt != nil {
		at := *e.RetractedAt
		out.RetractedAt = &at
	}
	return out
}

// Repository is the append-only progression event log.
type Repository interface {
	Append(ctx context.Context, ev Event) error
	GetActive(ctx context.Context, matchID, rosterID string) (Event, bool, error)
	Retract(ctx context.Context, eventID string, at time.Time) error
	ListByRoster(ctx context.Context, rosterID string) ([]Event, error)
}
