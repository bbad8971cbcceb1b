package postgres

import (
	"database/sql"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Constraint names from db/migrations used to classify unique violations.
const (
	constraintCompetitionPublicID = "competitions_public_id_key"
	constraintMatchPublicID       = "matches_public_id_key"
	constraintActiveEvent         = "progression_events_active_side_idx"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// uniqueViolation reports the violated constraint when err is a Postgres
// unique violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqUniqueViolation {
		return "", false
	}
	return pqErr.Constraint, true
}

func encodeJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func decodeJSON(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return sonic.Unmarshal(raw, dest)
}
