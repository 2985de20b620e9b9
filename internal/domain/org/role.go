package org

import (
	"fmt"
	"slices"
)

// Role represents a member's role within an organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	return slices.Contains(Roles(), r)
}

// roleLevel maps roles to their hierarchy level (higher = more privileges).
// The order is fixed; guards across the service depend on it.
var roleLevel = map[Role]int{
	RoleOwner:  100,
	RoleAdmin:  75,
	RoleMember: 50,
}

// Level returns the hierarchy level of the role. Unknown roles are 0.
func (r Role) Level() int {
	if level, ok := roleLevel[r]; ok {
		return level
	}
	return 0
}

// Ordering is the result of comparing two roles.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// Compare orders a relative to b in the role hierarchy.
func Compare(a, b Role) Ordering {
	la, lb := a.Level(), b.Level()
	switch {
	case la < lb:
		return Less
	case la > lb:
		return Greater
	default:
		return Equal
	}
}

// AtLeast reports whether a ranks at or above b.
// An unknown role never satisfies a known minimum.
func AtLeast(a, b Role) bool {
	if !a.IsValid() {
		return false
	}
	return Compare(a, b) != Less
}

// IsAtLeast checks if this role has at least the same level as another.
func (r Role) IsAtLeast(other Role) bool {
	return AtLeast(r, other)
}

// CanAssign checks if a holder of r may grant target to someone else.
func (r Role) CanAssign(target Role) bool {
	if !target.IsValid() {
		return false
	}
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target == RoleAdmin || target == RoleMember
	default:
		return false
	}
}

// ParseRole parses a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Roles returns all roles from highest to lowest.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleMember}
}
