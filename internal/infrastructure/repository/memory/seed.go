package memory

import (
	"time"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
)

const DemoCompetitionID = "demo-open-2026"

// SeedDemo loads one competition with four rosters for local development.
func (s *Store) SeedDemo(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.competitions[DemoCompetitionID]; exists {
		return
	}
	s.competitions[DemoCompetitionID] = competition.Competition{
		ID:        DemoCompetitionID,
		Name:      "Demo Open",
		CreatedAt: now,
	}

	teams := []struct {
		id, name, coach, race string
	}{
		{"demo-reavers", "Reikland Reavers", "Griff", "Human"},
		{"demo-grudgebearers", "Grudgebearers", "Thorin", "Dwarf"},
		{"demo-gouged-eye", "Gouged Eye", "Varag", "Orc"},
		{"demo-athelorn", "Athelorn Avengers", "Jordell", "Wood Elf"},
	}
	for _, t := range teams {
		players := make([]roster.Player, 0, 3)
		for i, pos := range []string{"Blitzer", "Lineman", "Thrower"} {
			players = append(players, roster.Player{
				UID:      t.id + "-" + string(rune('a'+i)),
				Name:     t.coach + " " + pos,
				Position: pos,
				Number:   i + 1,
			})
		}
		s.rosters[t.id] = rosterRow{seq: s.nextSeq(), item: roster.Roster{
			ID:            t.id,
			CompetitionID: DemoCompetitionID,
			TeamName:      t.name,
			CoachName:     t.coach,
			Race:          t.race,
			Players:       players,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}}
	}
}
