// Package progression applies and reverts the roster effects of reported matches.
package progression

import (
	"github.com/google/uuid"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
)

// Engine computes roster snapshots after a match side is applied or reverted.
// It never mutates its inputs.
type Engine struct {
	newInjuryID func() string
}

func NewEngine(newInjuryID func() string) *Engine {
	if newInjuryID == nil {
		newInjuryID = uuid.NewString
	}
	return &Engine{newInjuryID: newInjuryID}
}

// Apply records one side's match entries onto the roster.
//
// Every player's miss-next-game flag is cleared first, including players who
// are not listed in entries. Revert does not restore those flags.
func (e *Engine) Apply(r roster.Roster, entries []match.PlayerEntry) roster.Roster {
	out := r.Clone()
	for i := range out.Players {
		out.Players[i].MissNextGame = false
	}

	for _, entry := range entries {
		idx := out.PlayerIndex(entry.UID)
		if idx < 0 {
			continue
		}
		p := &out.Players[idx]

		p.SPP.TD += entry.TDs
		p.SPP.CP += entry.CP
		p.SPP.INT += entry.Int
		p.SPP.DEF += entry.Def
		p.SPP.BH += entry.Cas
		if entry.MVP {
			p.SPP.MVP++
		}

		switch entry.PostMatchStatus {
		case match.PostMatchMNG:
			p.MissNextGame = true
		case match.PostMatchSI:
			p.MissNextGame = true
			p.Injuries = append(p.Injuries, roster.Injury{
				ID:   e.newInjuryID(),
				Type: string(entry.EffectiveInjury()),
			})
		case match.PostMatchDead:
			p.Dead = true
			p.MissNextGame = true
		}
	}

	return out
}

// Revert subtracts what Apply added for the same entries. Counters never drop
// below zero.
func (e *Engine) Revert(r roster.Roster, entries []match.PlayerEntry) roster.Roster {
	out := r.Clone()

	for _, entry := range entries {
		idx := out.PlayerIndex(entry.UID)
		if idx < 0 {
			continue
		}
		p := &out.Players[idx]

		p.SPP.TD = subFloor(p.SPP.TD, entry.TDs)
		p.SPP.CP = subFloor(p.SPP.CP, entry.CP)
		p.SPP.INT = subFloor(p.SPP.INT, entry.Int)
		p.SPP.DEF = subFloor(p.SPP.DEF, entry.Def)
		p.SPP.BH = subFloor(p.SPP.BH, entry.Cas)
		if entry.MVP {
			p.SPP.MVP = subFloor(p.SPP.MVP, 1)
		}

		switch entry.PostMatchStatus {
		case match.PostMatchMNG:
			p.MissNextGame = false
		case match.PostMatchSI:
			p.MissNextGame = false
			p.Injuries = removeLastInjury(p.Injuries, string(entry.EffectiveInjury()))
		case match.PostMatchDead:
			p.Dead = false
			p.MissNextGame = false
		}
	}

	return out
}

// ApplyEvent applies ev.Entries and fills in the suspensions the blanket
// clear removed.
func (e *Engine) ApplyEvent(r roster.Roster, ev Event) (roster.Roster, Event) {
	ev.RosterID = r.ID
	ev.ClearedSuspensions = r.SuspendedUIDs()
	ev.Entries = append([]match.PlayerEntry(nil), ev.Entries...)
	return e.Apply(r, ev.Entries), ev
}

// Retract reverts a previously applied event. With restoreSuspensions the
// flags cleared by that Apply are set again on living players.
func (e *Engine) Retract(r roster.Roster, ev Event, restoreSuspensions bool) roster.Roster {
	out := e.Revert(r, ev.Entries)
	if !restoreSuspensions {
		return out
	}
	for _, uid := range ev.ClearedSuspensions {
		idx := out.PlayerIndex(uid)
		if idx < 0 || out.Players[idx].Dead {
			continue
		}
		out.Players[idx].MissNextGame = true
	}
	return out
}

func subFloor(v, delta int) int {
	v -= delta
	if v < 0 {
		return 0
	}
	return v
}

// removeLastInjury drops the newest injury of injuryType. Removing the only
// injury yields nil, which is what Player.Clone makes of an empty list too, so
// a player that never had an injury compares equal after Apply then Revert.
func removeLastInjury(injuries []roster.Injury, injuryType string) []roster.Injury {
	for i := len(injuries) - 1; i >= 0; i-- {
		if injuries[i].Type != injuryType {
			continue
		}
		if len(injuries) == 1 {
			return nil
		}
		out := make([]roster.Injury, 0, len(injuries)-1)
		out = append(out, injuries[:i]...)
		return append(out, injuries[i+1:]...)
	}
	return injuries
}
