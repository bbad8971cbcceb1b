package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
)

type EventRepository struct {
	guard
}

func (r *EventRepository) Append(_ context.Context, ev progression.Event) error {
	defer r.write()()

	for _, existing := range r.store.events {
		if existing.Active() && existing.MatchID == ev.MatchID && existing.RosterID == ev.RosterID {
			return fmt.Errorf("%w: match=%s roster=%s", progression.ErrEventExists, ev.MatchID, ev.RosterID)
		}
	}
	ev.RetractedAt = nil
	r.store.events = append(r.store.events, ev.Clone())
	return nil
}

func (r *EventRepository) GetActive(_ context.Context, matchID, rosterID string) (progression.Event, bool, error) {
	defer r.read()()

	for _, ev := range r.store.events {
		if ev.Active() && ev.MatchID == matchID && ev.RosterID == rosterID {
			return ev.Clone(), true, nil
		}
	}
	return progression.Event{}, false, nil
}

func (r *EventRepository) Retract(_ context.Context, eventID string, at time.Time) error {
	defer r.write()()

	for i := range r.store.events {
		if r.store.events[i].ID != eventID {
			continue
		}
		if !r.store.events[i].Active() {
			return fmt.Errorf("progression event %s already retracted", eventID)
		}
		r.store.events[i].RetractedAt = &at
		return nil
	}
	return fmt.Errorf("progression event %s not found", eventID)
}

func (r *EventRepository) ListByRoster(_ context.Context, rosterID string) ([]progression.Event, error) {
	defer r.read()()

	out := make([]progression.Event, 0)
	for _, ev := range r.store.events {
		if ev.RosterID == rosterID {
			out = append(out, ev.Clone())
		}
	}
	return out, nil
}
