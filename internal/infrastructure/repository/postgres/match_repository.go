package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	qb "github.com/riskibarqy/bloodbowl-league/internal/platform/querybuilder"
	"github.com/sqlc-dev/pqtype"
)

type MatchRepository struct {
	db dbtx
}

func (r *MatchRepository) Insert(ctx context.Context, item match.Match) error {
	return r.InsertMany(ctx, []match.Match{item})
}

// InsertMany writes every item in one statement, so a duplicate id leaves the
// table untouched.
func (r *MatchRepository) InsertMany(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	ins := qb.InsertInto("matches").Columns(qb.ModelColumns(matchTableModel{})...)
	for _, item := range items {
		row, err := matchToModel(item)
		if err != nil {
			return err
		}
		ins = ins.Values(
			row.PublicID,
			row.CompetitionPublicID,
			row.HomeRosterPublicID,
			row.AwayRosterPublicID,
			row.Round,
			row.Status,
			row.Data,
			row.CreatedAt,
			row.UpdatedAt,
		)
	}

	query, args, err := ins.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert matches query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintMatchPublicID {
			return fmt.Errorf("%w: %v", match.ErrDuplicateID, err)
		}
		return fmt.Errorf("insert matches: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	return r.get(ctx, matchID, false)
}

func (r *MatchRepository) GetByIDForUpdate(ctx context.Context, matchID string) (match.Match, bool, error) {
	return r.get(ctx, matchID, true)
}

func (r *MatchRepository) get(ctx context.Context, matchID string, forUpdate bool) (match.Match, bool, error) {
	query, args, err := getMatchQuery(matchID, forUpdate)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	item, err := matchFromModel(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func getMatchQuery(matchID string, forUpdate bool) (string, []any, error) {
	sel := qb.Select(qb.ModelColumns(matchTableModel{})...).From("matches").
		Where(qb.Eq("public_id", matchID))
	if forUpdate {
		sel = sel.ForUpdate()
	}
	return sel.ToSQL()
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	row, err := matchToModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("matches").
		Set("home_roster_public_id", row.HomeRosterPublicID).
		Set("away_roster_public_id", row.AwayRosterPublicID).
		Set("round", row.Round).
		Set("status", row.Status).
		Set("data", row.Data).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("public_id", row.PublicID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", match.ErrNotFound, item.ID)
	}
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	query, args, err := qb.DeleteFrom("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count deleted match rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", match.ErrNotFound, matchID)
	}
	return nil
}

func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID string, filter match.Filter) ([]match.Match, error) {
	conds := []qb.Condition{qb.Eq("competition_public_id", competitionID)}
	if filter.Status != "" {
		conds = append(conds, qb.Eq("status", string(filter.Status)))
	}

	query, args, err := qb.Select(qb.ModelColumns(matchTableModel{})...).From("matches").
		Where(conds...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by competition: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) DeleteByStatus(ctx context.Context, competitionID string, status match.Status) (int, error) {
	query, args, err := qb.DeleteFrom("matches").
		Where(
			qb.Eq("competition_public_id", competitionID),
			qb.Eq("status", string(status)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete matches by status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete matches by status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted matches: %w", err)
	}
	return int(n), nil
}

// matchToModel stores a zero Data as SQL NULL.
func matchToModel(item match.Match) (matchTableModel, error) {
	row := matchTableModel{
		PublicID:            item.ID,
		CompetitionPublicID: item.CompetitionID,
		HomeRosterPublicID:  item.HomeRosterID,
		AwayRosterPublicID:  item.AwayRosterID,
		Round:               item.Round,
		Status:              string(item.Status),
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
	}
	if isZeroData(item.Data) {
		return row, nil
	}

	raw, err := encodeJSON(item.Data)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode match %s data: %w", item.ID, err)
	}
	row.Data = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	return row, nil
}

func matchFromModel(row matchTableModel) (match.Match, error) {
	item := match.Match{
		ID:            row.PublicID,
		CompetitionID: row.CompetitionPublicID,
		HomeRosterID:  row.HomeRosterPublicID,
		AwayRosterID:  row.AwayRosterPublicID,
		Round:         row.Round,
		Status:        match.Status(row.Status),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Data.Valid {
		if err := decodeJSON(row.Data.RawMessage, &item.Data); err != nil {
			return match.Match{}, fmt.Errorf("decode match %s data: %w", row.PublicID, err)
		}
	}
	return item, nil
}

func isZeroData(d match.Data) bool {
	return d.Date.IsZero() &&
		d.HomeScore == 0 && d.AwayScore == 0 &&
		isZeroSide(d.HomeTeam) && isZeroSide(d.AwayTeam)
}

func isZeroSide(s match.TeamSide) bool {
	return s.TeamName == "" && s.CoachName == "" && s.Race == "" && len(s.Players) == 0
}
