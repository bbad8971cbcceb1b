package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
)

func TestStandingService_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, MatchServiceConfig{})
	h.competition(t, "c1")
	a := h.enroll(t, "c1", "A", "", "a1")
	b := h.enroll(t, "c1", "B", "", "b1")
	c := h.enroll(t, "c1", "C", "", "c1")

	create := func(home, away string, hs, as int) {
		t.Helper()
		if _, err := h.matches.Create(ctx, CreateMatchInput{
			CompetitionID: "c1",
			HomeRosterID:  home,
			AwayRosterID:  away,
			Data:          match.Data{HomeScore: hs, AwayScore: as},
		}); err != nil {
			t.Fatalf("create match: %v", err)
		}
	}
	create(a.ID, b.ID, 2, 1)
	create(b.ID, c.ID, 1, 1)

	rows, err := h.standings.List(ctx, "c1")
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	want := []struct {
		id     string
		points int
		diff   int
	}{
		{a.ID, 3, 1},
		{c.ID, 1, 0},
		{b.ID, 1, -1},
	}
	for i, w := range want {
		if rows[i].RosterID != w.id || rows[i].Points != w.points || rows[i].TDDiff != w.diff {
			t.Fatalf("row %d: expected %s pts=%d diff=%d, got %+v", i, w.id, w.points, w.diff, rows[i])
		}
	}
	if rows[0].TeamName != "A" {
		t.Fatalf("expected team name on row, got %q", rows[0].TeamName)
	}
}

func TestStandingService_UnknownCompetition(t *testing.T) {
	t.Parallel()

	h := newHarness(t, MatchServiceConfig{})
	if _, err := h.standings.List(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
