package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	qb "github.com/riskibarqy/bloodbowl-league/internal/platform/querybuilder"
)

type EventRepository struct {
	db dbtx
}

func (r *EventRepository) Append(ctx context.Context, ev progression.Event) error {
	entries, err := encodeJSON(ev.Entries)
	if err != nil {
		return fmt.Errorf("encode progression entries: %w", err)
	}

	query, args, err := qb.InsertModel("progression_events", progressionEventTableModel{
		PublicID:            ev.ID,
		MatchPublicID:       ev.MatchID,
		RosterPublicID:      ev.RosterID,
		CompetitionPublicID: ev.CompetitionID,
		Entries:             entries,
		ClearedSuspensions:  pq.StringArray(ev.ClearedSuspensions),
		RosterVersion:       ev.RosterVersion,
		AppliedAt:           ev.AppliedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert progression event query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintActiveEvent {
			return fmt.Errorf("%w: match=%s roster=%s", progression.ErrEventExists, ev.MatchID, ev.RosterID)
		}
		return fmt.Errorf("insert progression event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetActive(ctx context.Context, matchID, rosterID string) (progression.Event, bool, error) {
	query, args, err := qb.Select(qb.ModelColumns(progressionEventTableModel{})...).From("progression_events").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("roster_public_id", rosterID),
			qb.IsNull("retracted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return progression.Event{}, false, fmt.Errorf("build get active progression event query: %w", err)
	}

	var row progressionEventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return progression.Event{}, false, nil
		}
		return progression.Event{}, false, fmt.Errorf("get active progression event: %w", err)
	}

	ev, err := eventFromModel(row)
	if err != nil {
		return progression.Event{}, false, err
	}
	return ev, true, nil
}

func (r *EventRepository) Retract(ctx context.Context, eventID string, at time.Time) error {
	query, args, err := qb.Update("progression_events").
		Set("retracted_at", at).
		Where(
			qb.Eq("public_id", eventID),
			qb.IsNull("retracted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build retract progression event query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("retract progression event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("progression event %s not found or already retracted", eventID)
	}
	return nil
}

func (r *EventRepository) ListByRoster(ctx context.Context, rosterID string) ([]progression.Event, error) {
	query, args, err := qb.Select(qb.ModelColumns(progressionEventTableModel{})...).From("progression_events").
		Where(qb.Eq("roster_public_id", rosterID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list progression events query: %w", err)
	}

	var rows []progressionEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list progression events by roster: %w", err)
	}

	out := make([]progression.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := eventFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func eventFromModel(row progressionEventTableModel) (progression.Event, error) {
	var entries []match.PlayerEntry
	if err := decodeJSON(row.Entries, &entries); err != nil {
		return progression.Event{}, fmt.Errorf("decode entries of progression event %s: %w", row.PublicID, err)
	}
	ev := progression.Event{
		ID:            row.PublicID,
		MatchID:       row.MatchPublicID,
		RosterID:      row.RosterPublicID,
		CompetitionID: row.CompetitionPublicID,
		Entries:       entries,
		RosterVersion: row.RosterVersion,
		AppliedAt:     row.AppliedAt,
		RetractedAt:   row.RetractedAt,
	}
	if len(row.ClearedSuspensions) > 0 {
		ev.ClearedSuspensions = []string(row.ClearedSuspensions)
	}
	return ev, nil
}
