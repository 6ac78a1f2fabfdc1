package model

import "time"

// Dossier is a procurement case file (DAO) tracked through tasks to completion.
// Status is never stored; only Completed is persisted.
type Dossier struct {
	ID          int64      `json:"id"`
	Number      string     `json:"number"`
	DepositDate *time.Time `json:"deposit_date,omitempty"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Reference   string     `json:"reference"`
	Authority   string     `json:"authority"`
	LeadUserID  int64      `json:"lead_user_id"`
	TeamID      int64      `json:"team_id"`
	Completed   bool       `json:"completed"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TeamMember links a user to the team created alongside a dossier.
type TeamMember struct {
	TeamID int64  `json:"team_id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
}

// Team member roles as stored in team_members.role.
const (
	TeamRoleLead   = "lead"
	TeamRoleMember = "member"
)
