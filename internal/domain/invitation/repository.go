package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

// Repository defines the interface for invitation persistence.
type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	GetByTokenDigest(ctx context.Context, digest string) (*Invitation, error)

	// SupersedePending marks the pending invitation for (orgID, email), if
	// any, as superseded and returns how many rows changed.
	SupersedePending(ctx context.Context, orgID uuid.UUID, email string, at time.Time) (int64, error)

	// Transition moves an invitation from one status to another only if it
	// is still in from. It reports false when the condition did not hold.
	Transition(ctx context.Context, id uuid.UUID, from, to Status, at time.Time, by *uuid.UUID) (bool, error)

	// ExpireStale marks pending invitations sent before cutoff as expired.
	ExpireStale(ctx context.Context, f Filter, cutoff time.Time) (int64, error)

	// ListPending returns pending invitations sent at or after cutoff,
	// ordered by (sentAt, id) and strictly after the given position.
	ListPending(ctx context.Context, f Filter, cutoff time.Time, after *pagination.Position, limit int) ([]*Invitation, error)
}

// MembershipStore is the part of the membership store invitations need.
type MembershipStore interface {
	Get(ctx context.Context, userID, orgID uuid.UUID) (*org.Membership, error)
	Upsert(ctx context.Context, m *org.Membership) error
}

// OrganizationLookup resolves organizations.
type OrganizationLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*org.Organization, error)
}

// Notification is what a Notifier delivers to an invited address.
type Notification struct {
	InvitationID uuid.UUID
	OrgID        uuid.UUID
	OrgName      string
	Email        string
	Role         org.Role
	Token        string
	AcceptURL    string
	ExpiresAt    time.Time
}

// Notifier delivers invitation notifications.
type Notifier interface {
	NotifyInvitation(ctx context.Context, n *Notification) error
}

// RateLimiter limits invitation issuance.
type RateLimiter interface {
	Allow(ctx context.Context, key string, n int) (bool, error)
}

// Recorder receives invitation metrics.
type Recorder interface {
	RecordInvitationsIssued(count int)
	RecordInvitationTransition(to string)
}
