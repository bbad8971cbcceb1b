package competition

import "time"

// Competition groups enrolled rosters and their matches.
type Competition struct {
	ID                 string
	Name               string
	CommissionerUserID string
	CreatedAt          time.Time
}
