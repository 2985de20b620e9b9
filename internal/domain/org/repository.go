package org

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines the interface for organization persistence.
type OrganizationRepository interface {
	// Create creates a new organization.
	Create(ctx context.Context, o *Organization) error

	// GetByID retrieves an organization by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)

	// ListByUser lists the organizations a user belongs to, with the user's role.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*MembershipWithOrg, error)
}

// MembershipRepository defines the interface for membership persistence.
type MembershipRepository interface {
	// Get retrieves a membership. Returns ErrMemberNotFound when absent.
	Get(ctx context.Context, userID, orgID uuid.UUID) (*Membership, error)

	// RoleOf returns the user's role in the organization; ok is false when
	// the user is not a member.
	RoleOf(ctx context.Context, userID, orgID uuid.UUID) (role Role, ok bool, err error)

	// Upsert creates the membership or updates its role.
	Upsert(ctx context.Context, m *Membership) error

	// Delete removes a membership.
	Delete(ctx context.Context, userID, orgID uuid.UUID) error

	// ListByOrg lists the members of an organization ordered by join time.
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*Membership, error)

	// CountByRole counts members of an organization holding the role.
	// Inside a transaction the counted rows stay locked until it ends, so
	// two concurrent demotions cannot both see another owner.
	CountByRole(ctx context.Context, orgID uuid.UUID, role Role) (int, error)
}

// TeamRepository defines the interface for team persistence.
type TeamRepository interface {
	Create(ctx context.Context, t *Team) error
}

// AppRepository defines the interface for app persistence.
type AppRepository interface {
	Create(ctx context.Context, a *App) error
}

// ResourceResolver maps teams and apps to their owning organization.
type ResourceResolver interface {
	// ResolveTeam returns the organization that owns the team.
	// Returns an error wrapping ErrResourceNotFound for unknown teams.
	ResolveTeam(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error)

	// ResolveApp returns the team (if any) and organization of the app.
	// Returns an error wrapping ErrResourceNotFound for unknown apps.
	ResolveApp(ctx context.Context, appID uuid.UUID) (*AppScope, error)
}

// Transactor runs fn inside a single store transaction. Implementations
// wrap the context with WithCommitHooks and call the returned function once
// the outcome is known.
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
