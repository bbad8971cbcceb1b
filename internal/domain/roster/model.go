package roster

import (
	"errors"
	"time"
)

// ErrStaleVersion is returned when a roster write carries an outdated version.
var ErrStaleVersion = errors.New("roster version is stale")

// SPP holds the star player point counters of one player.
type SPP struct {
	CP    int `json:"cp"`
	TD    int `json:"td"`
	INT   int `json:"int"`
	DEF   int `json:"def"`
	BH    int `json:"bh"`
	SI    int `json:"si"`
	Kills int `json:"kills"`
	MVP   int `json:"mvp"`
}

type Injury struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type Player struct {
	UID          string   `json:"uid"`
	Name         string   `json:"name"`
	Position     string   `json:"position"`
	Number       int      `json:"number"`
	SPP          SPP      `json:"spp"`
	Injuries     []Injury `json:"injuries"`
	MissNextGame bool     `json:"missNextGame"`
	Dead         bool     `json:"dead"`
}

// Roster is the snapshot of one team enrolled in a competition.
// Version increments on every successful write.
type Roster struct {
	ID            string
	CompetitionID string
	TeamName      string
	CoachName     string
	CoachUserID   string
	Race          string
	Players       []Player
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy so callers can mutate players freely.
func (r Roster) Clone() Roster {
	out := r
	if r.Players == nil {
		return out
	}
	out.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		out.Players[i] = p.Clone()
	}
	return out
}

func (p Player) Clone() Player {
	out := p
	if p.Injuries != nil {
		out.Injuries = append([]Injury(nil), p.Injuries...)
	}
	return out
}

// PlayerIndex returns the position of uid in Players, or -1.
func (r Roster) PlayerIndex(uid string) int {
	for i := range r.Players {
		if r.Players[i].UID == uid {
			return i
		}
	}
	return -1
}

// SuspendedUIDs lists players currently flagged to miss the next game.
func (r Roster) SuspendedUIDs() []string {
	var out []string
	for _, p := range r.Players {
		if p.MissNextGame {
			out = append(out, p.UID)
		}
	}
	return out
}
