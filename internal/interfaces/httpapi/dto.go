package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	"github.com/riskibarqy/bloodbowl-league/internal/usecase"
)

type createCompetitionRequest struct {
	ID                 string `json:"id" validate:"omitempty,max=64"`
	Name               string `json:"name" validate:"required,max=120"`
	CommissionerUserID string `json:"commissionerUserId" validate:"omitempty,max=64"`
}

type enrollPlayerRequest struct {
	UID      string `json:"uid" validate:"omitempty,max=64"`
	Name     string `json:"name" validate:"required,max=100"`
	Position string `json:"position" validate:"omitempty,max=60"`
	Number   int    `json:"number" validate:"gte=0,lte=99"`
}

type enrollRosterRequest struct {
	TeamName    string                `json:"teamName" validate:"required,max=100"`
	CoachName   string                `json:"coachName" validate:"omitempty,max=100"`
	CoachUserID string                `json:"coachUserId" validate:"omitempty,max=64"`
	Race        string                `json:"race" validate:"omitempty,max=60"`
	Players     []enrollPlayerRequest `json:"players" validate:"max=64,dive"`
}

// Counter and status checks stay in the domain so their errors keep the
// match-specific reason.
type playerEntryRequest struct {
	UID             string `json:"uid"`
	TDs             int    `json:"tds"`
	Cas             int    `json:"cas"`
	CP              int    `json:"cp"`
	Int             int    `json:"int"`
	Def             int    `json:"def"`
	MVP             bool   `json:"mvp"`
	PostMatchStatus string `json:"postMatchStatus"`
	InjuryDetail    string `json:"injuryDetail"`
}

type teamSideRequest struct {
	TeamName  string               `json:"teamName"`
	CoachName string               `json:"coachName"`
	Race      string               `json:"race"`
	Players   []playerEntryRequest `json:"players" validate:"max=64"`
}

type matchDataRequest struct {
	Date      time.Time       `json:"date"`
	HomeScore int             `json:"homeScore"`
	AwayScore int             `json:"awayScore"`
	HomeTeam  teamSideRequest `json:"homeTeam"`
	AwayTeam  teamSideRequest `json:"awayTeam"`
}

type createMatchRequest struct {
	ID           string           `json:"id" validate:"omitempty,max=64"`
	HomeRosterID string           `json:"homeRosterId" validate:"required"`
	AwayRosterID string           `json:"awayRosterId" validate:"required"`
	Round        string           `json:"round" validate:"omitempty,max=32"`
	Data         matchDataRequest `json:"data"`
}

type matchDataEnvelopeRequest struct {
	Data matchDataRequest `json:"data"`
}

type competitionDTO struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CommissionerUserID string    `json:"commissionerUserId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

type rosterDTO struct {
	ID            string          `json:"id"`
	CompetitionID string          `json:"competitionId"`
	TeamName      string          `json:"teamName"`
	CoachName     string          `json:"coachName"`
	CoachUserID   string          `json:"coachUserId,omitempty"`
	Race          string          `json:"race"`
	Players       []roster.Player `json:"players"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type matchDTO struct {
	ID            string     `json:"id"`
	CompetitionID string     `json:"competitionId"`
	HomeRosterID  string     `json:"homeRosterId"`
	AwayRosterID  string     `json:"awayRosterId"`
	Round         string     `json:"round,omitempty"`
	Status        string     `json:"status"`
	Data          match.Data `json:"data"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type progressionEventDTO struct {
	ID                 string              `json:"id"`
	MatchID            string              `json:"matchId"`
	RosterID           string              `json:"rosterId"`
	Entries            []match.PlayerEntry `json:"entries"`
	ClearedSuspensions []string            `json:"clearedSuspensions"`
	RosterVersion      int64               `json:"rosterVersion"`
	AppliedAt          time.Time           `json:"appliedAt"`
	RetractedAt        *time.Time          `json:"retractedAt,omitempty"`
	Active             bool                `json:"active"`
}

type scheduleDTO struct {
	Rounds  int        `json:"rounds"`
	Matches []matchDTO `json:"matches"`
}

type deletedDTO struct {
	Deleted int `json:"deleted"`
}

func (r enrollRosterRequest) toInput(competitionID string) usecase.EnrollRosterInput {
	players := make([]usecase.EnrollPlayerInput, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, usecase.EnrollPlayerInput{
			UID:      p.UID,
			Name:     p.Name,
			Position: p.Position,
			Number:   p.Number,
		})
	}
	return usecase.EnrollRosterInput{
		CompetitionID: competitionID,
		TeamName:      r.TeamName,
		CoachName:     r.CoachName,
		CoachUserID:   r.CoachUserID,
		Race:          r.Race,
		Players:       players,
	}
}

func (r matchDataRequest) toDomain() match.Data {
	return match.Data{
		Date:      r.Date,
		HomeScore: r.HomeScore,
		AwayScore: r.AwayScore,
		HomeTeam:  r.HomeTeam.toDomain(),
		AwayTeam:  r.AwayTeam.toDomain(),
	}
}

func (r teamSideRequest) toDomain() match.TeamSide {
	players := make([]match.PlayerEntry, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, match.PlayerEntry{
			UID:             p.UID,
			TDs:             p.TDs,
			Cas:             p.Cas,
			CP:              p.CP,
			Int:             p.Int,
			Def:             p.Def,
			MVP:             p.MVP,
			PostMatchStatus: match.PostMatchStatus(p.PostMatchStatus),
			InjuryDetail:    match.InjuryType(p.InjuryDetail),
		})
	}
	return match.TeamSide{
		TeamName:  r.TeamName,
		CoachName: r.CoachName,
		Race:      r.Race,
		Players:   players,
	}
}

func competitionToDTO(ctx context.Context, v competition.Competition) competitionDTO {
	_, span := startSpan(ctx, "httpapi.competitionToDTO")
	defer span.End()

	return competitionDTO{
		ID:                 v.ID,
		Name:               v.Name,
		CommissionerUserID: v.CommissionerUserID,
		CreatedAt:          v.CreatedAt,
	}
}

func rosterToDTO(v roster.Roster) rosterDTO {
	players := v.Players
	if players == nil {
		players = []roster.Player{}
	}
	return rosterDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		TeamName:      v.TeamName,
		CoachName:     v.CoachName,
		CoachUserID:   v.CoachUserID,
		Race:          v.Race,
		Players:       players,
		Version:       v.Version,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func matchToDTO(v match.Match) matchDTO {
	data := v.Data.Clone()
	if data.HomeTeam.Players == nil {
		data.HomeTeam.Players = []match.PlayerEntry{}
	}
	if data.AwayTeam.Players == nil {
		data.AwayTeam.Players = []match.PlayerEntry{}
	}
	return matchDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		HomeRosterID:  v.HomeRosterID,
		AwayRosterID:  v.AwayRosterID,
		Round:         v.Round,
		Status:        string(v.Status),
		Data:          data,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	return out
}

func progressionEventToDTO(v progression.Event) progressionEventDTO {
	cleared := v.ClearedSuspensions
	if cleared == nil {
		cleared = []string{}
	}
	return progressionEventDTO{
		ID:                 v.ID,
		MatchID:            v.MatchID,
		RosterID:           v.RosterID,
		Entries:            v.Entries,
		ClearedSuspensions: cleared,
		RosterVersion:      v.RosterVersion,
		AppliedAt:          v.AppliedAt,
		RetractedAt:        v.RetractedAt,
		Active:             v.Active(),
	}
}
