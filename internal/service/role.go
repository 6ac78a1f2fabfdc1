package service

import (
	"strconv"
	"strings"

	"daoapi/internal/model"
)

var capabilityByRoleID = map[int]model.Capability{
	model.RoleIDDirector:    model.CapabilityDirector,
	model.RoleIDAdmin:       model.CapabilityAdmin,
	model.RoleIDProjectLead: model.CapabilityProjectLead,
	model.RoleIDTeamMember:  model.CapabilityTeamMember,
	model.RoleIDReader:      model.CapabilityReader,
}

// Role names as they appear in the roles table, in imported user sheets and in older tokens.
var capabilityByName = map[string]model.Capability{
	"director":        model.CapabilityDirector,
	"directeur":       model.CapabilityDirector,
	"directrice":      model.CapabilityDirector,
	"admin":           model.CapabilityAdmin,
	"administrator":   model.CapabilityAdmin,
	"administrateur":  model.CapabilityAdmin,
	"administratrice": model.CapabilityAdmin,
	"project_lead":    model.CapabilityProjectLead,
	"lead":            model.CapabilityProjectLead,
	"chef_projet":     model.CapabilityProjectLead,
	"chef_de_projet":  model.CapabilityProjectLead,
	"team_member":     model.CapabilityTeamMember,
	"member":          model.CapabilityTeamMember,
	"membre":          model.CapabilityTeamMember,
	"membre_equipe":   model.CapabilityTeamMember,
	"membre_d_equipe": model.CapabilityTeamMember,
	"reader":          model.CapabilityReader,
	"lecteur":         model.CapabilityReader,
	"lectrice":        model.CapabilityReader,
}

var roleNameReplacer = strings.NewReplacer(
	" ", "_", "-", "_", "'", "_",
	"é", "e", "è", "e", "ê", "e",
)

// ClassifyRoleID maps a seeded role id to its capability. Unknown ids read as Reader.
func ClassifyRoleID(id int) model.Capability {
	if c, ok := capabilityByRoleID[id]; ok {
		return c
	}
	return model.CapabilityReader
}

// ClassifyRole maps a raw role value to a capability. The value may be a numeric role id
// or a role name in any case, with spaces or hyphens. Anything unrecognised is Reader,
// the least privileged class.
func ClassifyRole(raw string) model.Capability {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.Atoi(raw); err == nil {
		return ClassifyRoleID(id)
	}
	name := roleNameReplacer.Replace(strings.ToLower(raw))
	if c, ok := capabilityByName[name]; ok {
		return c
	}
	return model.CapabilityReader
}

// ClassifyUser prefers the user's role id and falls back to the role name.
func ClassifyUser(u model.User) model.Capability {
	if c, ok := capabilityByRoleID[u.RoleID]; ok {
		return c
	}
	return ClassifyRole(u.RoleName)
}

// RoleIDFor returns the seeded role id of a capability, or 0 when there is none.
func RoleIDFor(c model.Capability) int {
	for id, cc := range capabilityByRoleID {
		if cc == c {
			return id
		}
	}
	return 0
}

func isManager(c model.Capability) bool {
	return c == model.CapabilityDirector || c == model.CapabilityAdmin
}

// CanCreateDossier reports whether c may open new dossiers.
func CanCreateDossier(c model.Capability) bool { return isManager(c) }

// CanManageUsers reports whether c may create accounts.
func CanManageUsers(c model.Capability) bool { return isManager(c) }

// SeesAllDossiers reports whether c reads every dossier rather than only its own.
func SeesAllDossiers(c model.Capability) bool {
	return isManager(c) || c == model.CapabilityReader
}

// LeadEligible reports whether a user of capability c may lead a dossier team.
// In strict mode only project leads qualify; otherwise admins and directors may also lead.
func LeadEligible(c model.Capability, strict bool) bool {
	if c == model.CapabilityProjectLead {
		return true
	}
	return !strict && isManager(c)
}

// MemberEligible reports whether a user of capability c may sit on a dossier team.
func MemberEligible(c model.Capability) bool {
	return c == model.CapabilityTeamMember
}
