package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPlayed    Status = "played"
)

func NormalizeStatus(value string) Status {
	return Status(strings.ToLower(strings.TrimSpace(value)))
}

func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusPlayed
}

// PostMatchStatus is the outcome recorded for one player after the game.
type PostMatchStatus string

const (
	PostMatchOK   PostMatchStatus = "ok"
	PostMatchKO   PostMatchStatus = "ko"
	PostMatchBH   PostMatchStatus = "bh"
	PostMatchSI   PostMatchStatus = "si"
	PostMatchDead PostMatchStatus = "dead"
	PostMatchMNG  PostMatchStatus = "mng"
	PostMatchSent PostMatchStatus = "sent"
)

var postMatchStatuses = map[PostMatchStatus]struct{}{
	PostMatchOK:   {},
	PostMatchKO:   {},
	PostMatchBH:   {},
	PostMatchSI:   {},
	PostMatchDead: {},
	PostMatchMNG:  {},
	PostMatchSent: {},
}

// InjuryType is a lasting injury recorded on a seriously injured player.
type InjuryType string

const (
	InjuryNiggle InjuryType = "niggle"
	InjuryMA     InjuryType = "MA"
	InjuryAV     InjuryType = "AV"
	InjuryAG     InjuryType = "AG"
	InjuryST     InjuryType = "ST"
	InjuryPA     InjuryType = "PA"
)

var injuryTypes = map[InjuryType]struct{}{
	InjuryNiggle: {},
	InjuryMA:     {},
	InjuryAV:     {},
	InjuryAG:     {},
	InjuryST:     {},
	InjuryPA:     {},
}

// PlayerEntry is one player's line in a reported match.
type PlayerEntry struct {
	UID             string          `json:"uid"`
	TDs             int             `json:"tds"`
	Cas             int             `json:"cas"`
	CP              int             `json:"cp"`
	Int             int             `json:"int"`
	Def             int             `json:"def"`
	MVP             bool            `json:"mvp"`
	PostMatchStatus PostMatchStatus `json:"postMatchStatus"`
	InjuryDetail    InjuryType      `json:"injuryDetail,omitempty"`
}

// EffectiveInjury returns the injury an si entry inflicts.
func (e PlayerEntry) EffectiveInjury() InjuryType {
	if e.InjuryDetail == "" {
		return InjuryNiggle
	}
	return e.InjuryDetail
}

type TeamSide struct {
	TeamName  string        `json:"teamName"`
	CoachName string        `json:"coachName"`
	Race      string        `json:"race"`
	Players   []PlayerEntry `json:"players"`
}

// Data is the reported payload of a match.
type Data struct {
	Date      time.Time `json:"date"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	HomeTeam  TeamSide  `json:"homeTeam"`
	AwayTeam  TeamSide  `json:"awayTeam"`
}

// Match is a scheduled or played fixture between two rosters.
type Match struct {
	ID            string
	CompetitionID string
	HomeRosterID  string
	AwayRosterID  string
	Round         string
	Status        Status
	Data          Data
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (d Data) Clone() Data {
	out := d
	out.HomeTeam.Players = append([]PlayerEntry(nil), d.HomeTeam.Players...)
	out.AwayTeam.Players = append([]PlayerEntry(nil), d.AwayTeam.Players...)
	return out
}

func (m Match) Clone() Match {
	out := m
	out.Data = m.Data.Clone()
	return out
}

// Involves reports whether rosterID plays in the match.
func (m Match) Involves(rosterID string) bool {
	return m.HomeRosterID == rosterID || m.AwayRosterID == rosterID
}

// Casualties sums the cas column of a side.
func (s TeamSide) Casualties() int {
	total := 0
	for _, p := range s.Players {
		total += p.Cas
	}
	return total
}
