package standing

// Row is one team's line in a competition table. It is derived from played
// matches and never persisted.
type Row struct {
	RosterID  string `json:"rosterId"`
	TeamName  string `json:"teamName"`
	CoachName string `json:"coachName"`
	Race      string `json:"race"`
	Played    int    `json:"played"`
	Won       int    `json:"won"`
	Drawn     int    `json:"drawn"`
	Lost      int    `json:"lost"`
	TDFor     int    `json:"tdFor"`
	TDAgainst int    `json:"tdAgainst"`
	TDDiff    int    `json:"tdDiff"`
	CasFor    int    `json:"casFor"`
	Points    int    `json:"points"`
}

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)
