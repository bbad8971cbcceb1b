package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

type competitionTableModel struct {
	PublicID           string    `db:"public_id"`
	Name               string    `db:"name"`
	CommissionerUserID string    `db:"commissioner_user_id"`
	CreatedAt          time.Time `db:"created_at"`
}

type rosterTableModel struct {
	PublicID            string    `db:"public_id"`
	CompetitionPublicID string    `db:"competition_public_id"`
	TeamName            string    `db:"team_name"`
	CoachName           string    `db:"coach_name"`
	CoachUserID         string    `db:"coach_user_id"`
	Race                string    `db:"race"`
	Players             []byte    `db:"players"`
	Version             int64     `db:"version"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

type matchTableModel struct {
	PublicID            string                `db:"public_id"`
	CompetitionPublicID string                `db:"competition_public_id"`
	HomeRosterPublicID  string                `db:"home_roster_public_id"`
	AwayRosterPublicID  string                `db:"away_roster_public_id"`
	Round               string                `db:"round"`
	Status              string                `db:"status"`
	Data                pqtype.NullRawMessage `db:"data"`
	CreatedAt           time.Time             `db:"created_at"`
	UpdatedAt           time.Time             `db:"updated_at"`
}

type progressionEventTableModel struct {
	PublicID            string         `db:"public_id"`
	MatchPublicID       string         `db:"match_public_id"`
	RosterPublicID      string         `db:"roster_public_id"`
	CompetitionPublicID string         `db:"competition_public_id"`
	Entries             []byte         `db:"entries"`
	ClearedSuspensions  pq.StringArray `db:"cleared_suspensions"`
	RosterVersion       int64          `db:"roster_version"`
	AppliedAt           time.Time      `db:"applied_at"`
	RetractedAt         *time.Time     `db:"retracted_at"`
}
