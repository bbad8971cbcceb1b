package match

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTooManyMVPs        = errors.New("too many mvps")
	ErrInvalidScore       = errors.New("invalid score")
	ErrInvalidPlayerEntry = errors.New("invalid player entry")
)

// MaxMVPsPerSide caps mvp awards for one team in one match.
const MaxMVPsPerSide = 1

// Validate checks a reported payload before any progression runs.
func (d Data) Validate() error {
	if d.HomeScore < 0 {
		return fmt.Errorf("%w: homeScore must be >= 0, got %d", ErrInvalidScore, d.HomeScore)
	}
	if d.AwayScore < 0 {
		return fmt.Errorf("%w: awayScore must be >= 0, got %d", ErrInvalidScore, d.AwayScore)
	}
	if err := d.HomeTeam.validate("homeTeam"); err != nil {
		return err
	}
	return d.AwayTeam.validate("awayTeam")
}

func (s TeamSide) validate(side string) error {
	mvps := 0
	seen := make(map[string]struct{}, len(s.Players))
	for i, p := range s.Players {
		field := fmt.Sprintf("%s.players[%d]", side, i)
		if strings.TrimSpace(p.UID) == "" {
			return fmt.Errorf("%w: %s.uid is required", ErrInvalidPlayerEntry, field)
		}
		if _, dup := seen[p.UID]; dup {
			return fmt.Errorf("%w: %s duplicates uid %s", ErrInvalidPlayerEntry, field, p.UID)
		}
		seen[p.UID] = struct{}{}

		counters := []struct {
			name  string
			value int
		}{{"tds", p.TDs}, {"cas", p.Cas}, {"cp", p.CP}, {"int", p.Int}, {"def", p.Def}}
		for _, c := range counters {
			if c.value < 0 {
				return fmt.Errorf("%w: %s.%s must be >= 0, got %d", ErrInvalidPlayerEntry, field, c.name, c.value)
			}
		}

		status := p.PostMatchStatus
		if status == "" {
			status = PostMatchOK
		}
		if _, ok := postMatchStatuses[status]; !ok {
			return fmt.Errorf("%w: %s.postMatchStatus %q is not supported", ErrInvalidPlayerEntry, field, p.PostMatchStatus)
		}
		if p.InjuryDetail != "" {
			if status != PostMatchSI {
				return fmt.Errorf("%w: %s.injuryDetail is only allowed with postMatchStatus=si", ErrInvalidPlayerEntry, field)
			}
			if _, ok := injuryTypes[p.InjuryDetail]; !ok {
				return fmt.Errorf("%w: %s.injuryDetail %q is not supported", ErrInvalidPlayerEntry, field, p.InjuryDetail)
			}
		}

		if p.MVP {
			mvps++
		}
	}
	if mvps > MaxMVPsPerSide {
		return fmt.Errorf("%w: %s has %d mvp entries, max=%d", ErrTooManyMVPs, side, mvps, MaxMVPsPerSide)
	}
	return nil
}
