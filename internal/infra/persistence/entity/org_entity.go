package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/org"
)

// Ids are stored as char(36) so the same schema works on postgres and mysql,
// and so (sent_at, id) keyset ordering matches string ordering.

// OrganizationEntity is the GORM entity for organizations.
type OrganizationEntity struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"size:100;not null"`
	CreatedBy uuid.UUID `gorm:"type:char(36);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name.
func (OrganizationEntity) TableName() string {
	return "organizations"
}

// ToDomain converts to domain entity.
func (e *OrganizationEntity) ToDomain() *org.Organization {
	return &org.Organization{
		ID:        e.ID,
		Name:      e.Name,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// FromDomainOrganization converts from domain entity.
func FromDomainOrganization(o *org.Organization) *OrganizationEntity {
	return &OrganizationEntity{
		ID:        o.ID,
		Name:      o.Name,
		CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// MembershipEntity is the GORM entity for memberships.
type MembershipEntity struct {
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	OrgID     uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	Role      string    `gorm:"size:16;not null"`
	JoinedAt  time.Time
	UpdatedAt time.Time
}

// TableName returns the table name.
func (MembershipEntity) TableName() string {
	return "memberships"
}

// ToDomain converts to domain entity.
func (e *MembershipEntity) ToDomain() *org.Membership {
	return &org.Membership{
		UserID:    e.UserID,
		OrgID:     e.OrgID,
		Role:      org.Role(e.Role),
		JoinedAt:  e.JoinedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// FromDomainMembership converts from domain entity.
func FromDomainMembership(m *org.Membership) *MembershipEntity {
	return &MembershipEntity{
		UserID:    m.UserID,
		OrgID:     m.OrgID,
		Role:      m.Role.String(),
		JoinedAt:  m.JoinedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// TeamEntity is the GORM entity for teams.
type TeamEntity struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	OrgID     uuid.UUID `gorm:"type:char(36);not null;index"`
	Name      string    `gorm:"size:100;not null"`
	CreatedAt time.Time
}

// TableName returns the table name.
func (TeamEntity) TableName() string {
	return "teams"
}

// ToDomain converts to domain entity.
func (e *TeamEntity) ToDomain() *org.Team {
	return &org.Team{ID: e.ID, OrgID: e.OrgID, Name: e.Name, CreatedAt: e.CreatedAt}
}

// FromDomainTeam converts from domain entity.
func FromDomainTeam(t *org.Team) *TeamEntity {
	return &TeamEntity{ID: t.ID, OrgID: t.OrgID, Name: t.Name, CreatedAt: t.CreatedAt}
}

// AppEntity is the GORM entity for apps.
type AppEntity struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey"`
	OrgID     uuid.UUID  `gorm:"type:char(36);not null;index"`
	TeamID    *uuid.UUID `gorm:"type:char(36);index"`
	Name      string     `gorm:"size:100;not null"`
	CreatedAt time.Time
}

// TableName returns the table name.
func (AppEntity) TableName() string {
	return "apps"
}

// ToDomain converts to domain entity.
func (e *AppEntity) ToDomain() *org.App {
	return &org.App{ID: e.ID, OrgID: e.OrgID, TeamID: e.TeamID, Name: e.Name, CreatedAt: e.CreatedAt}
}

// FromDomainApp converts from domain entity.
func FromDomainApp(a *org.App) *AppEntity {
	return &AppEntity{ID: a.ID, OrgID: a.OrgID, TeamID: a.TeamID, Name: a.Name, CreatedAt: a.CreatedAt}
}
