package org

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant that owns memberships, teams, apps and invitations.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership is the (user, organization) relation carrying a role.
type Membership struct {
	UserID    uuid.UUID `json:"user_id"`
	OrgID     uuid.UUID `json:"org_id"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMembership creates a membership joined now.
func NewMembership(userID, orgID uuid.UUID, role Role, now time.Time) *Membership {
	return &Membership{
		UserID:    userID,
		OrgID:     orgID,
		Role:      role,
		JoinedAt:  now,
		UpdatedAt: now,
	}
}

// MembershipWithOrg pairs a membership with its organization.
type MembershipWithOrg struct {
	Organization *Organization `json:"organization"`
	Role         Role          `json:"role"`
}

// Team belongs to exactly one organization.
type Team struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// App belongs to a team, or to the whole organization when TeamID is nil.
type App struct {
	ID        uuid.UUID  `json:"id"`
	OrgID     uuid.UUID  `json:"org_id"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsOrgWide returns true if the app is not bound to a team.
func (a *App) IsOrgWide() bool {
	return a.TeamID == nil
}

// AppScope is the resolved ownership of an app.
type AppScope struct {
	TeamID *uuid.UUID
	OrgID  uuid.UUID
}
