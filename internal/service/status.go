package service

import "time"

// Status is the derived state of a dossier. It is computed on read and never stored.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOnTrack   Status = "on_track"
	StatusAtRisk    Status = "at_risk"
)

// AtRiskWithinDays is the largest number of days left before the deposit date that
// still counts as at risk.
const AtRiskWithinDays = 3

var statusLabels = map[Status]string{
	StatusCompleted: "Terminé",
	StatusOnTrack:   "En cours",
	StatusAtRisk:    "À risque",
}

// Label returns the display text shown on dashboards.
func (s Status) Label() string {
	return statusLabels[s]
}

// StatusInfo is the status block attached to every dossier response.
type StatusInfo struct {
	Status        Status `json:"status"`
	Label         string `json:"label"`
	DaysRemaining *int   `json:"days_remaining,omitempty"`
}

// DeriveStatus classifies a dossier from its completion flag and deposit date relative to today.
//
// A completed dossier is always Completed. Without a deposit date it is OnTrack. Otherwise
// the whole-day difference between the deposit date and today decides: more than three days
// left is OnTrack, three or fewer (including past deadlines) is AtRisk. Both dates are
// reduced to their calendar day first, so the hour of either value never matters.
func DeriveStatus(depositDate *time.Time, completed bool, today time.Time) Status {
	if completed {
		return StatusCompleted
	}
	if depositDate == nil {
		return StatusOnTrack
	}
	if DaysUntil(*depositDate, today) > AtRiskWithinDays {
		return StatusOnTrack
	}
	return StatusAtRisk
}

// DaysUntil returns the signed number of calendar days from today to date.
func DaysUntil(date, today time.Time) int {
	return int(civilDate(date).Sub(civilDate(today)) / (24 * time.Hour))
}

// DescribeStatus derives the status and fills in its label and remaining days.
func DescribeStatus(depositDate *time.Time, completed bool, today time.Time) StatusInfo {
	st := DeriveStatus(depositDate, completed, today)
	info := StatusInfo{Status: st, Label: st.Label()}
	if depositDate != nil && !completed {
		days := DaysUntil(*depositDate, today)
		info.DaysRemaining = &days
	}
	return info
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
