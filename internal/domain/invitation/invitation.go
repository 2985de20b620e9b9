package invitation

import (
	"time"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/org"
)

// Status represents the status of an invitation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusExpired    Status = "expired"
	StatusRevoked    Status = "revoked"
	StatusSuperseded Status = "superseded"
)

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusExpired, StatusRevoked, StatusSuperseded:
		return true
	}
	return false
}

// Invitation is an invite of one email address into one organization.
type Invitation struct {
	id          uuid.UUID
	orgID       uuid.UUID
	email       string
	role        org.Role
	issuedBy    uuid.UUID
	nonce       string
	tokenDigest string
	status      Status
	sentAt      time.Time
	resolvedAt  *time.Time
	resolvedBy  *uuid.UUID
}

// NewInvitation creates a pending invitation. sentAt is stored at
// microsecond precision so it survives a round trip through SQL.
func NewInvitation(orgID uuid.UUID, email string, role org.Role, issuedBy uuid.UUID, nonce string, sentAt time.Time) *Invitation {
	return &Invitation{
		id:       uuid.New(),
		orgID:    orgID,
		email:    email,
		role:     role,
		issuedBy: issuedBy,
		nonce:    nonce,
		status:   StatusPending,
		sentAt:   sentAt.UTC().Truncate(time.Microsecond),
	}
}

// ReconstructInvitation reconstructs an invitation from persistence.
func ReconstructInvitation(
	id uuid.UUID,
	orgID uuid.UUID,
	email string,
	role org.Role,
	issuedBy uuid.UUID,
	nonce string,
	tokenDigest string,
	status Status,
	sentAt time.Time,
	resolvedAt *time.Time,
	resolvedBy *uuid.UUID,
) *Invitation {
	return &Invitation{
		id:          id,
		orgID:       orgID,
		email:       email,
		role:        role,
		issuedBy:    issuedBy,
		nonce:       nonce,
		tokenDigest: tokenDigest,
		status:      status,
		sentAt:      sentAt.UTC(),
		resolvedAt:  resolvedAt,
		resolvedBy:  resolvedBy,
	}
}

// Getters
func (i *Invitation) ID() uuid.UUID          { return i.id }
func (i *Invitation) OrgID() uuid.UUID       { return i.orgID }
func (i *Invitation) Email() string          { return i.email }
func (i *Invitation) Role() org.Role         { return i.role }
func (i *Invitation) IssuedBy() uuid.UUID    { return i.issuedBy }
func (i *Invitation) Nonce() string          { return i.nonce }
func (i *Invitation) TokenDigest() string    { return i.tokenDigest }
func (i *Invitation) Status() Status         { return i.status }
func (i *Invitation) SentAt() time.Time      { return i.sentAt }
func (i *Invitation) ResolvedAt() *time.Time { return i.resolvedAt }
func (i *Invitation) ResolvedBy() *uuid.UUID { return i.resolvedBy }

// SetTokenDigest sets the lookup digest of the invitation token.
func (i *Invitation) SetTokenDigest(digest string) {
	i.tokenDigest = digest
}

// IsExpired reports whether the invitation is older than ttl at now,
// regardless of its stored status.
func (i *Invitation) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(i.sentAt) > ttl
}

// EffectiveStatus is the stored status with lazy expiry applied.
func (i *Invitation) EffectiveStatus(now time.Time, ttl time.Duration) Status {
	if !i.status.IsTerminal() && i.IsExpired(now, ttl) {
		return StatusExpired
	}
	return i.status
}

// ExpiresAt returns when the invitation stops being acceptable.
func (i *Invitation) ExpiresAt(ttl time.Duration) time.Time {
	return i.sentAt.Add(ttl)
}

// Resolve moves a pending invitation into a terminal status. It only
// updates the in-memory value; persistence goes through a conditional
// update in the repository.
func (i *Invitation) Resolve(to Status, at time.Time, by *uuid.UUID) {
	i.status = to
	at = at.UTC()
	i.resolvedAt = &at
	i.resolvedBy = by
}

// Issued is a freshly created invitation together with its clear token.
// The token is available only here, and to the recipient's own listing.
type Issued struct {
	Invitation *Invitation
	Token      string
	AcceptURL  string
}

// UserInvite is a pending invitation as seen by its recipient.
type UserInvite struct {
	Invitation *Invitation
	OrgName    string
	Token      string
	AcceptURL  string
}

// Filter selects invitations by organization or by recipient email.
// Exactly one of OrgID and Email is set.
type Filter struct {
	OrgID *uuid.UUID
	Email string
}

// ForOrg returns a filter over one organization.
func ForOrg(orgID uuid.UUID) Filter {
	return Filter{OrgID: &orgID}
}

// ForEmail returns a filter over one recipient.
func ForEmail(email string) Filter {
	return Filter{Email: email}
}

func (f Filter) scope() []string {
	if f.OrgID != nil {
		return []string{"org", f.OrgID.String()}
	}
	return []string{"email", f.Email}
}
