package match

import (
	"errors"
	"testing"
)

func TestDataValidate(t *testing.T) {
	valid := Data{
		HomeScore: 2,
		AwayScore: 1,
		HomeTeam: TeamSide{Players: []PlayerEntry{
			{UID: "h1", TDs: 2, MVP: true, PostMatchStatus: PostMatchOK},
			{UID: "h2", Cas: 1, PostMatchStatus: PostMatchSI, InjuryDetail: InjuryMA},
		}},
		AwayTeam: TeamSide{Players: []PlayerEntry{
			{UID: "a1", TDs: 1, MVP: true},
			{UID: "a2", PostMatchStatus: PostMatchDead},
		}},
	}

	tests := []struct {
		name      string
		mutate    func(*Data)
		targetErr error
	}{
		{
			name:   "valid data",
			mutate: func(_ *Data) {},
		},
		{
			name: "two mvps on one side",
			mutate: func(d *Data) {
				d.AwayTeam.Players[1].MVP = true
			},
			targetErr: ErrTooManyMVPs,
		},
		{
			name: "negative score",
			mutate: func(d *Data) {
				d.AwayScore = -1
			},
			targetErr: ErrInvalidScore,
		},
		{
			name: "missing uid",
			mutate: func(d *Data) {
				d.HomeTeam.Players[0].UID = " "
			},
			targetErr: ErrInvalidPlayerEntry,
		},
		{
			name: "duplicate uid",
			mutate: func(d *Data) {
				d.HomeTeam.Players[1].UID = "h1"
			},
			targetErr: ErrInvalidPlayerEntry,
		},
		{
			name: "negative counter",
			mutate: func(d *Data) {
				d.AwayTeam.Players[0].Def = -2
			},
			targetErr: ErrInvalidPlayerEntry,
		},
		{
			name: "unknown post match status",
			mutate: func(d *Data) {
				d.AwayTeam.Players[0].PostMatchStatus = "exploded"
			},
			targetErr: ErrInvalidPlayerEntry,
		},
		{
			name: "injury detail without si",
			mutate: func(d *Data) {
				d.AwayTeam.Players[0].InjuryDetail = InjuryAG
			},
			targetErr: ErrInvalidPlayerEntry,
		},
		{
			name: "unknown injury detail",
			mutate: func(d *Data) {
				d.HomeTeam.Players[1].InjuryDetail = "WINGS"
			},
			targetErr: ErrInvalidPlayerEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := valid.Clone()
			tt.mutate(&data)

			err := data.Validate()
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestPlayerEntryEffectiveInjury(t *testing.T) {
	if got := (PlayerEntry{PostMatchStatus: PostMatchSI}).EffectiveInjury(); got != InjuryNiggle {
		t.Fatalf("expected niggle default, got %s", got)
	}
	if got := (PlayerEntry{PostMatchStatus: PostMatchSI, InjuryDetail: InjuryST}).EffectiveInjury(); got != InjuryST {
		t.Fatalf("expected ST, got %s", got)
	}
}
