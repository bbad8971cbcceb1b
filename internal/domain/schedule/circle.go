// Package schedule builds single round-robin fixture lists.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInsufficientParticipants = errors.New("at least two participants are required")

// Pairing is one fixture produced by Generate.
type Pairing struct {
	Round int
	Home  string
	Away  string
}

// RoundLabel renders the 1-based round number used on match records.
func (p Pairing) RoundLabel() string {
	return strconv.Itoa(p.Round)
}

// Generate runs the circle method over ids and returns the pairings together
// with the number of rounds. An odd field gets a bye, and bye pairings are
// left out.
func Generate(ids []string) ([]Pairing, int, error) {
	if len(ids) < 2 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInsufficientParticipants, len(ids))
	}

	const bye = ""
	teams := append([]string(nil), ids...)
	if len(teams)%2 == 1 {
		teams = append(teams, bye)
	}

	n := len(teams)
	rounds := n - 1
	out := make([]Pairing, 0, rounds*n/2)
	for round := 1; round <= rounds; round++ {
		for i := 0; i < n/2; i++ {
			home, away := teams[i], teams[n-1-i]
			if home == bye || away == bye {
				continue
			}
			out = append(out, Pairing{Round: round, Home: home, Away: away})
		}
		rotate(teams)
	}

	return out, rounds, nil
}

// rotate keeps teams[0] fixed and moves the last element to index 1.
func rotate(teams []string) {
	if len(teams) < 3 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}
