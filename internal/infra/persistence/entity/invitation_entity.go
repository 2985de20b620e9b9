package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/domain/org"
)

// InvitationEntity is the GORM entity for organization invitations.
//
// PendingKey is "<org_id>:<email>" while the invitation is pending and NULL
// otherwise. Its unique index keeps at most one pending invitation per
// (org, email) even if two issuers race.
type InvitationEntity struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	OrgID       uuid.UUID  `gorm:"type:char(36);not null;index:idx_org_invitations_org,priority:1"`
	Email       string     `gorm:"size:320;not null;index:idx_org_invitations_email,priority:1"`
	Role        string     `gorm:"size:16;not null"`
	IssuedBy    uuid.UUID  `gorm:"type:char(36);not null"`
	Nonce       string     `gorm:"size:128;not null"`
	TokenDigest string     `gorm:"size:64;not null;uniqueIndex"`
	Status      string     `gorm:"size:16;not null;index:idx_org_invitations_org,priority:2;index:idx_org_invitations_email,priority:2"`
	SentAt      time.Time  `gorm:"precision:6;not null;index:idx_org_invitations_org,priority:3;index:idx_org_invitations_email,priority:3"`
	PendingKey  *string    `gorm:"size:400;uniqueIndex"`
	ResolvedAt  *time.Time `gorm:"precision:6"`
	ResolvedBy  *uuid.UUID `gorm:"type:char(36)"`
}

// TableName returns the table name.
func (InvitationEntity) TableName() string {
	return "org_invitations"
}

// ToDomain converts to domain entity.
func (e *InvitationEntity) ToDomain() *invitation.Invitation {
	return invitation.ReconstructInvitation(
		e.ID,
		e.OrgID,
		e.Email,
		org.Role(e.Role),
		e.IssuedBy,
		e.Nonce,
		e.TokenDigest,
		invitation.Status(e.Status),
		e.SentAt,
		e.ResolvedAt,
		e.ResolvedBy,
	)
}

// FromDomainInvitation converts from domain entity.
func FromDomainInvitation(inv *invitation.Invitation) *InvitationEntity {
	e := &InvitationEntity{
		ID:          inv.ID(),
		OrgID:       inv.OrgID(),
		Email:       inv.Email(),
		Role:        inv.Role().String(),
		IssuedBy:    inv.IssuedBy(),
		Nonce:       inv.Nonce(),
		TokenDigest: inv.TokenDigest(),
		Status:      inv.Status().String(),
		SentAt:      inv.SentAt(),
		ResolvedAt:  inv.ResolvedAt(),
		ResolvedBy:  inv.ResolvedBy(),
	}
	if inv.Status() == invitation.StatusPending {
		key := PendingKey(inv.OrgID(), inv.Email())
		e.PendingKey = &key
	}
	return e
}

// PendingKey returns the uniqueness key of a pending invitation.
func PendingKey(orgID uuid.UUID, email string) string {
	return orgID.String() + ":" + email
}
