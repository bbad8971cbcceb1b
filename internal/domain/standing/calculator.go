package standing

import (
	"sort"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
)

// Compute builds the table for rosters from their played matches. Rows keep
// roster order when points, td difference and touchdowns scored are all tied.
func Compute(rosters []roster.Roster, matches []match.Match) []Row {
	rows := make([]Row, len(rosters))
	index := make(map[string]int, len(rosters))
	for i, r := range rosters {
		rows[i] = Row{
			RosterID:  r.ID,
			TeamName:  r.TeamName,
			CoachName: r.CoachName,
			Race:      r.Race,
		}
		index[r.ID] = i
	}

	for _, m := range matches {
		if m.Status != match.StatusPlayed {
			continue
		}
		if i, ok := index[m.HomeRosterID]; ok {
			record(&rows[i], m.Data.HomeScore, m.Data.AwayScore, m.Data.HomeTeam.Casualties())
		}
		if i, ok := index[m.AwayRosterID]; ok {
			record(&rows[i], m.Data.AwayScore, m.Data.HomeScore, m.Data.AwayTeam.Casualties())
		}
	}

	for i := range rows {
		rows[i].TDDiff = rows[i].TDFor - rows[i].TDAgainst
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.TDDiff != b.TDDiff {
			return a.TDDiff > b.TDDiff
		}
		return a.TDFor > b.TDFor
	})

	return rows
}

func record(row *Row, scored, conceded, cas int) {
	row.Played++
	row.TDFor += scored
	row.TDAgainst += conceded
	row.CasFor += cas

	switch {
	case scored > conceded:
		row.Won++
		row.Points += PointsWin
	case scored == conceded:
		row.Drawn++
		row.Points += PointsDraw
	default:
		row.Lost++
		row.Points += PointsLoss
	}
}
