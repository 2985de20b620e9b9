package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/infra/persistence/entity"
)

// OrganizationRepository implements org.OrganizationRepository.
type OrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

var _ org.OrganizationRepository = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) Create(ctx context.Context, o *org.Organization) error {
	if err := conn(ctx, r.db).Create(entity.FromDomainOrganization(o)).Error; err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*org.Organization, error) {
	var e entity.OrganizationEntity
	err := conn(ctx, r.db).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, org.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization by ID: %w", err)
	}
	return e.ToDomain(), nil
}

type organizationWithRole struct {
	entity.OrganizationEntity `gorm:"embedded"`
	Role                      string
}

func (r *OrganizationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*org.MembershipWithOrg, error) {
	var rows []organizationWithRole
	err := conn(ctx, r.db).
		Table("organizations").
		Select("organizations.*, memberships.role").
		Joins("JOIN memberships ON memberships.org_id = organizations.id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list organizations by user: %w", err)
	}

	out := make([]*org.MembershipWithOrg, len(rows))
	for i := range rows {
		out[i] = &org.MembershipWithOrg{
			Organization: rows[i].OrganizationEntity.ToDomain(),
			Role:         org.Role(rows[i].Role),
		}
	}
	return out, nil
}

// MembershipRepository implements org.MembershipRepository.
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository.
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

var _ org.MembershipRepository = (*MembershipRepository)(nil)

func (r *MembershipRepository) Get(ctx context.Context, userID, orgID uuid.UUID) (*org.Membership, error) {
	var e entity.MembershipEntity
	err := conn(ctx, r.db).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, org.ErrMemberNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *MembershipRepository) RoleOf(ctx context.Context, userID, orgID uuid.UUID) (org.Role, bool, error) {
	var roles []string
	err := conn(ctx, r.db).
		Model(&entity.MembershipEntity{}).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil {
		return "", false, fmt.Errorf("get role: %w", err)
	}
	if len(roles) == 0 {
		return "", false, nil
	}
	return org.Role(roles[0]), true, nil
}

func (r *MembershipRepository) Upsert(ctx context.Context, m *org.Membership) error {
	err := conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "org_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(entity.FromDomainMembership(m)).Error
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, userID, orgID uuid.UUID) error {
	result := conn(ctx, r.db).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		Delete(&entity.MembershipEntity{})
	if result.Error != nil {
		return fmt.Errorf("delete membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return org.ErrMemberNotFound
	}
	return nil
}

func (r *MembershipRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*org.Membership, error) {
	var entities []entity.MembershipEntity
	err := conn(ctx, r.db).
		Where("org_id = ?", orgID).
		Order("joined_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]*org.Membership, len(entities))
	for i := range entities {
		members[i] = entities[i].ToDomain()
	}
	return members, nil
}

// CountByRole selects the matching rows instead of COUNT(*) because
// postgres refuses FOR UPDATE on aggregates. Inside a transaction the rows
// are locked, and a concurrent writer blocked on them re-reads them after
// this transaction commits.
func (r *MembershipRepository) CountByRole(ctx context.Context, orgID uuid.UUID, role org.Role) (int, error) {
	q := conn(ctx, r.db).
		Model(&entity.MembershipEntity{}).
		Where("org_id = ? AND role = ?", orgID, role.String())
	if inTransaction(ctx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var userIDs []string
	if err := q.Pluck("user_id", &userIDs).Error; err != nil {
		return 0, fmt.Errorf("count members by role: %w", err)
	}
	return len(userIDs), nil
}

// ResourceRepository persists teams and apps and resolves them to their
// organization.
type ResourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

var (
	_ org.TeamRepository   = (*teamStore)(nil)
	_ org.AppRepository    = (*appStore)(nil)
	_ org.ResourceResolver = (*ResourceRepository)(nil)
)

type teamStore struct{ *ResourceRepository }

type appStore struct{ *ResourceRepository }

// Teams returns the team repository view.
func (r *ResourceRepository) Teams() org.TeamRepository { return teamStore{r} }

// Apps returns the app repository view.
func (r *ResourceRepository) Apps() org.AppRepository { return appStore{r} }

func (s teamStore) Create(ctx context.Context, t *org.Team) error {
	if err := conn(ctx, s.db).Create(entity.FromDomainTeam(t)).Error; err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

func (s appStore) Create(ctx context.Context, a *org.App) error {
	if err := conn(ctx, s.db).Create(entity.FromDomainApp(a)).Error; err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return nil
}

func (r *ResourceRepository) ResolveTeam(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	var orgIDs []uuid.UUID
	err := conn(ctx, r.db).
		Model(&entity.TeamEntity{}).
		Where("id = ?", teamID).
		Limit(1).
		Pluck("org_id", &orgIDs).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve team: %w", err)
	}
	if len(orgIDs) == 0 {
		return uuid.Nil, org.ErrTeamNotFound
	}
	return orgIDs[0], nil
}

// ResolveApp resolves an app through its team when it has one. An app
// whose team no longer exists does not resolve.
func (r *ResourceRepository) ResolveApp(ctx context.Context, appID uuid.UUID) (*org.AppScope, error) {
	var e entity.AppEntity
	err := conn(ctx, r.db).Where("id = ?", appID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, org.ErrAppNotFound
		}
		return nil, fmt.Errorf("resolve app: %w", err)
	}

	if e.TeamID == nil {
		return &org.AppScope{OrgID: e.OrgID}, nil
	}

	orgID, err := r.ResolveTeam(ctx, *e.TeamID)
	if err != nil {
		if errors.Is(err, org.ErrResourceNotFound) {
			return nil, org.ErrAppNotFound
		}
		return nil, err
	}
	return &org.AppScope{TeamID: e.TeamID, OrgID: orgID}, nil
}
