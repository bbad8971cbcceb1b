package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	qb "github.com/riskibarqy/bloodbowl-league/internal/platform/querybuilder"
)

type RosterRepository struct {
	db dbtx
}

func (r *RosterRepository) Create(ctx context.Context, item roster.Roster) error {
	row, err := rosterToModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("rosters", row, "")
	if err != nil {
		return fmt.Errorf("build insert roster query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert roster: %w", err)
	}
	return nil
}

func (r *RosterRepository) GetByID(ctx context.Context, rosterID string) (roster.Roster, bool, error) {
	return r.get(ctx, rosterID, false)
}

func (r *RosterRepository) GetByIDForUpdate(ctx context.Context, rosterID string) (roster.Roster, bool, error) {
	return r.get(ctx, rosterID, true)
}

func (r *RosterRepository) get(ctx context.Context, rosterID string, forUpdate bool) (roster.Roster, bool, error) {
	sel := qb.Select(qb.ModelColumns(rosterTableModel{})...).From("rosters").
		Where(qb.Eq("public_id", rosterID))
	if forUpdate {
		sel = sel.ForUpdate()
	}
	query, args, err := sel.ToSQL()
	if err != nil {
		return roster.Roster{}, false, fmt.Errorf("build get roster by id query: %w", err)
	}

	var row rosterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Roster{}, false, nil
		}
		return roster.Roster{}, false, fmt.Errorf("get roster by id: %w", err)
	}

	item, err := rosterFromModel(row)
	if err != nil {
		return roster.Roster{}, false, err
	}
	return item, true, nil
}

func (r *RosterRepository) ListByCompetition(ctx context.Context, competitionID string) ([]roster.Roster, error) {
	query, args, err := qb.Select(qb.ModelColumns(rosterTableModel{})...).From("rosters").
		Where(qb.Eq("competition_public_id", competitionID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rosters query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rosters by competition: %w", err)
	}

	out := make([]roster.Roster, 0, len(rows))
	for _, row := range rows {
		item, err := rosterFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *RosterRepository) Update(ctx context.Context, item roster.Roster) (roster.Roster, error) {
	players, err := encodeJSON(item.Players)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("encode roster players: %w", err)
	}

	query, args, err := qb.Update("rosters").
		Set("team_name", item.TeamName).
		Set("coach_name", item.CoachName).
		Set("coach_user_id", item.CoachUserID).
		Set("race", item.Race).
		Set("players", players).
		Set("updated_at", item.UpdatedAt).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", item.ID),
			qb.Eq("version", item.Version),
		).
		Suffix("RETURNING version, updated_at").
		ToSQL()
	if err != nil {
		return roster.Roster{}, fmt.Errorf("build update roster query: %w", err)
	}

	var stored struct {
		Version   int64     `db:"version"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := r.db.GetContext(ctx, &stored, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Roster{}, r.missedUpdate(ctx, item)
		}
		return roster.Roster{}, fmt.Errorf("update roster: %w", err)
	}

	out := item.Clone()
	out.Version = stored.Version
	out.UpdatedAt = stored.UpdatedAt
	return out, nil
}

// missedUpdate tells a stale version apart from a missing roster.
func (r *RosterRepository) missedUpdate(ctx context.Context, item roster.Roster) error {
	current, exists, err := r.GetByID(ctx, item.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("roster %s not found", item.ID)
	}
	return fmt.Errorf("%w: roster=%s have=%d stored=%d", roster.ErrStaleVersion, item.ID, item.Version, current.Version)
}

func rosterToModel(item roster.Roster) (rosterTableModel, error) {
	players, err := encodeJSON(item.Players)
	if err != nil {
		return rosterTableModel{}, fmt.Errorf("encode roster players: %w", err)
	}
	return rosterTableModel{
		PublicID:            item.ID,
		CompetitionPublicID: item.CompetitionID,
		TeamName:            item.TeamName,
		CoachName:           item.CoachName,
		CoachUserID:         item.CoachUserID,
		Race:                item.Race,
		Players:             players,
		Version:             item.Version,
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
	}, nil
}

func rosterFromModel(row rosterTableModel) (roster.Roster, error) {
	var players []roster.Player
	if err := decodeJSON(row.Players, &players); err != nil {
		return roster.Roster{}, fmt.Errorf("decode players of roster %s: %w", row.PublicID, err)
	}
	return roster.Roster{
		ID:            row.PublicID,
		CompetitionID: row.CompetitionPublicID,
		TeamName:      row.TeamName,
		CoachName:     row.CoachName,
		CoachUserID:   row.CoachUserID,
		Race:          row.Race,
		Players:       players,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
