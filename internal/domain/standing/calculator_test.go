package standing

import (
	"reflect"
	"testing"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
)

func played(id, home, away string, homeScore, awayScore int) match.Match {
	return match.Match{
		ID:           id,
		HomeRosterID: home,
		AwayRosterID: away,
		Status:       match.StatusPlayed,
		Data:         match.Data{HomeScore: homeScore, AwayScore: awayScore},
	}
}

func TestCompute_WinDrawLoss(t *testing.T) {
	rosters := []roster.Roster{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	matches := []match.Match{
		played("m1", "A", "B", 2, 1),
		played("m2", "B", "C", 1, 1),
	}

	rows := Compute(rosters, matches)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	order := []string{rows[0].RosterID, rows[1].RosterID, rows[2].RosterID}
	if !reflect.DeepEqual(order, []string{"A", "C", "B"}) {
		t.Fatalf("unexpected order: %v", order)
	}

	a, c, b := rows[0], rows[1], rows[2]
	if a.Points != 3 || a.Won != 1 || a.TDDiff != 1 {
		t.Fatalf("unexpected row A: %+v", a)
	}
	if c.Points != 1 || c.Drawn != 1 || c.TDDiff != 0 {
		t.Fatalf("unexpected row C: %+v", c)
	}
	if b.Points != 1 || b.Drawn != 1 || b.Lost != 1 || b.TDDiff != -1 || b.Played != 2 {
		t.Fatalf("unexpected row B: %+v", b)
	}
}

func TestCompute_IgnoresScheduledAndUnknown(t *testing.T) {
	rosters := []roster.Roster{{ID: "A"}, {ID: "B"}}
	scheduled := played("m1", "A", "B", 5, 0)
	scheduled.Status = match.StatusScheduled

	rows := Compute(rosters, []match.Match{
		scheduled,
		played("m2", "A", "Z", 3, 0),
	})

	for _, row := range rows {
		if row.RosterID == "B" && row.Played != 0 {
			t.Fatalf("scheduled match counted for B: %+v", row)
		}
		if row.RosterID == "A" && (row.Played != 1 || row.Points != 3) {
			t.Fatalf("expected A credited for the match against an unknown roster: %+v", row)
		}
	}
}

func TestCompute_CasualtiesAndTieBreak(t *testing.T) {
	rosters := []roster.Roster{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	m1 := played("m1", "A", "B", 3, 1)
	m1.Data.HomeTeam.Players = []match.PlayerEntry{{UID: "p1", Cas: 2}, {UID: "p2", Cas: 1}}
	m2 := played("m2", "C", "D", 2, 0)

	rows := Compute(rosters, []match.Match{m1, m2})
	if rows[0].RosterID != "A" || rows[1].RosterID != "C" {
		t.Fatalf("expected A then C by td scored, got %s, %s", rows[0].RosterID, rows[1].RosterID)
	}
	if rows[0].CasFor != 3 {
		t.Fatalf("expected casFor 3, got %d", rows[0].CasFor)
	}
}

func TestCompute_MatchOrderDoesNotMatter(t *testing.T) {
	rosters := []roster.Roster{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	matches := []match.Match{
		played("m1", "A", "B", 1, 0),
		played("m2", "C", "D", 2, 2),
		played("m3", "A", "C", 0, 1),
		played("m4", "B", "D", 3, 1),
	}
	reversed := make([]match.Match, len(matches))
	for i := range matches {
		reversed[len(matches)-1-i] = matches[i]
	}

	if got, want := Compute(rosters, reversed), Compute(rosters, matches); !reflect.DeepEqual(got, want) {
		t.Fatalf("standings depend on match order\n got: %+v\nwant: %+v", got, want)
	}
}
