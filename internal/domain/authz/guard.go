package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/org"
)

// GuardKind identifies one of the closed set of guard variants.
type GuardKind int

const (
	KindOrgMember GuardKind = iota + 1
	KindTeamMember
	KindAppMember
	KindSelfOrRole
)

// String returns the string representation of the kind.
func (k GuardKind) String() string {
	switch k {
	case KindOrgMember:
		return "org_member"
	case KindTeamMember:
		return "team_member"
	case KindAppMember:
		return "app_member"
	case KindSelfOrRole:
		return "self_or_role"
	default:
		return "unknown"
	}
}

// Guard is a parameterized authorization predicate. Guards are plain values
// built per call; only the constructors below produce valid ones.
type Guard struct {
	kind    GuardKind
	target  uuid.UUID
	orgID   uuid.UUID
	minRole org.Role
}

// OrgMember requires membership in the organization.
func OrgMember(orgID uuid.UUID) Guard {
	return Guard{kind: KindOrgMember, target: orgID, orgID: orgID}
}

// TeamMember requires membership in the organization that owns the team.
func TeamMember(teamID uuid.UUID) Guard {
	return Guard{kind: KindTeamMember, target: teamID}
}

// AppMember requires membership in the organization that owns the app,
// through its team or directly for org-wide apps.
func AppMember(appID uuid.UUID) Guard {
	return Guard{kind: KindAppMember, target: appID}
}

// SelfOrRole passes when the caller is targetUserID, or holds at least
// minRole in the organization.
func SelfOrRole(targetUserID, orgID uuid.UUID, minRole org.Role) Guard {
	return Guard{kind: KindSelfOrRole, target: targetUserID, orgID: orgID, minRole: minRole}
}

// AtLeast returns a copy of the guard that also requires minRole.
func (g Guard) AtLeast(minRole org.Role) Guard {
	g.minRole = minRole
	return g
}

// String describes the guard for logs.
func (g Guard) String() string {
	s := fmt.Sprintf("%s(%s", g.kind, g.target)
	if g.kind == KindSelfOrRole {
		s += fmt.Sprintf(", org=%s", g.orgID)
	}
	if g.minRole != "" {
		s += fmt.Sprintf(", min=%s", g.minRole)
	}
	return s + ")"
}
