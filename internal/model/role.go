package model

// Capability is the closed set of role classes gating dashboards and actions.
type Capability string

const (
	CapabilityDirector    Capability = "director"
	CapabilityAdmin       Capability = "admin"
	CapabilityProjectLead Capability = "project_lead"
	CapabilityTeamMember  Capability = "team_member"
	CapabilityReader      Capability = "reader"
)

// Role IDs seeded by the schema migration.
const (
	RoleIDDirector    = 1
	RoleIDAdmin       = 2
	RoleIDProjectLead = 3
	RoleIDTeamMember  = 4
	RoleIDReader      = 5
)
