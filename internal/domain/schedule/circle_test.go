package schedule

import (
	"errors"
	"fmt"
	"testing"
)

func TestGenerate_FourTeams(t *testing.T) {
	pairings, rounds, err := Generate([]string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", rounds)
	}
	if len(pairings) != 6 {
		t.Fatalf("expected 6 fixtures, got %d", len(pairings))
	}

	perRound := map[int]int{}
	for _, p := range pairings {
		perRound[p.Round]++
	}
	for round := 1; round <= 3; round++ {
		if perRound[round] != 2 {
			t.Fatalf("expected 2 fixtures in round %d, got %d", round, perRound[round])
		}
	}
	assertEveryPairOnce(t, []string{"A", "B", "C", "D"}, pairings)
}

func TestGenerate_FieldSizes(t *testing.T) {
	for n := 2; n <= 9; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("r%d", i+1)
			}

			pairings, rounds, err := Generate(ids)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}

			wantRounds := n - 1
			perRound := n / 2
			if n%2 == 1 {
				wantRounds = n
				perRound = (n - 1) / 2
			}
			if rounds != wantRounds {
				t.Fatalf("expected %d rounds, got %d", wantRounds, rounds)
			}

			counts := map[int]int{}
			for _, p := range pairings {
				if p.Home == "" || p.Away == "" {
					t.Fatalf("bye leaked into fixtures: %+v", p)
				}
				counts[p.Round]++
			}
			for round := 1; round <= rounds; round++ {
				if counts[round] != perRound {
					t.Fatalf("round %d: expected %d fixtures, got %d", round, perRound, counts[round])
				}
			}
			assertEveryPairOnce(t, ids, pairings)
		})
	}
}

func TestGenerate_NoTeamTwicePerRound(t *testing.T) {
	pairings, _, err := Generate([]string{"a", "b", "c", "d", "e", "f"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	seen := map[string]struct{}{}
	for _, p := range pairings {
		for _, id := range []string{p.Home, p.Away} {
			key := p.RoundLabel() + "/" + id
			if _, dup := seen[key]; dup {
				t.Fatalf("team %s plays twice in round %s", id, p.RoundLabel())
			}
			seen[key] = struct{}{}
		}
	}
}

func TestGenerate_InsufficientParticipants(t *testing.T) {
	for _, ids := range [][]string{nil, {"solo"}} {
		if _, _, err := Generate(ids); !errors.Is(err, ErrInsufficientParticipants) {
			t.Fatalf("expected ErrInsufficientParticipants for %v, got %v", ids, err)
		}
	}
}

func assertEveryPairOnce(t *testing.T, ids []string, pairings []Pairing) {
	t.Helper()

	seen := map[string]int{}
	for _, p := range pairings {
		a, b := p.Home, p.Away
		if a > b {
			a, b = b, a
		}
		seen[a+"|"+b]++
	}

	want := len(ids) * (len(ids) - 1) / 2
	if len(seen) != want {
		t.Fatalf("expected %d distinct pairs, got %d", want, len(seen))
	}
	for pair, count := range seen {
		if count != 1 {
			t.Fatalf("pair %s appears %d times", pair, count)
		}
	}
}
