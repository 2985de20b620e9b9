package org

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementations

type mockOrgRepo struct {
	mock.Mock
}

func (m *mockOrgRepo) Create(ctx context.Context, o *Organization) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Organization), args.Error(1)
}

func (m *mockOrgRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*MembershipWithOrg, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MembershipWithOrg), args.Error(1)
}

type mockMemberRepo struct {
	mock.Mock
}

func (m *mockMemberRepo) Get(ctx context.Context, userID, orgID uuid.UUID) (*Membership, error) {
	args := m.Called(ctx, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *mockMemberRepo) RoleOf(ctx context.Context, userID, orgID uuid.UUID) (Role, bool, error) {
	args := m.Called(ctx, userID, orgID)
	return args.Get(0).(Role), args.Bool(1), args.Error(2)
}

func (m *mockMemberRepo) Upsert(ctx context.Context, ms *Membership) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *mockMemberRepo) Delete(ctx context.Context, userID, orgID uuid.UUID) error {
	args := m.Called(ctx, userID, orgID)
	return args.Error(0)
}

func (m *mockMemberRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*Membership, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Membership), args.Error(1)
}

func (m *mockMemberRepo) CountByRole(ctx context.Context, orgID uuid.UUID, role Role) (int, error) {
	args := m.Called(ctx, orgID, role)
	return args.Int(0), args.Error(1)
}

type mockTeamRepo struct {
	mock.Mock
}

func (m *mockTeamRepo) Create(ctx context.Context, t *Team) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

type mockAppRepo struct {
	mock.Mock
}

func (m *mockAppRepo) Create(ctx context.Context, a *App) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveTeam(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockResolver) ResolveApp(ctx context.Context, appID uuid.UUID) (*AppScope, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AppScope), args.Error(1)
}

type mockTransactor struct{}

func (mockTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Test helper

type fixture struct {
	domain    *Domain
	orgs      *mockOrgRepo
	members   *mockMemberRepo
	teams     *mockTeamRepo
	apps      *mockAppRepo
	resources *mockResolver
}

func setupDomain() *fixture {
	f := &fixture{
		orgs:      new(mockOrgRepo),
		members:   new(mockMemberRepo),
		teams:     new(mockTeamRepo),
		apps:      new(mockAppRepo),
		resources: new(mockResolver),
	}
	f.domain = NewDomain(f.orgs, f.members, f.teams, f.apps, f.resources, mockTransactor{}, zap.NewNop())
	return f
}

func member(userID, orgID uuid.UUID, role Role) *Membership {
	return &Membership{UserID: userID, OrgID: orgID, Role: role}
}

// Tests

func TestDomain_CreateOrganization(t *testing.T) {
	t.Run("success bootstraps owner", func(t *testing.T) {
		f := setupDomain()
		ctx := context.Background()
		creator := uuid.New()

		f.orgs.On("Create", ctx, mock.AnythingOfType("*org.Organization")).Return(nil)
		f.members.On("Upsert", ctx, mock.MatchedBy(func(m *Membership) bool {
			return m.UserID == creator && m.Role == RoleOwner
		})).Return(nil)

		o, err := f.domain.CreateOrganization(ctx, creator, "  Acme  ")

		require.NoError(t, err)
		assert.Equal(t, "Acme", o.Name)
		assert.Equal(t, creator, o.CreatedBy)
		f.orgs.AssertExpectations(t)
		f.members.AssertExpectations(t)
	})

	t.Run("empty name", func(t *testing.T) {
		f := setupDomain()

		o, err := f.domain.CreateOrganization(context.Background(), uuid.New(), "   ")

		assert.Nil(t, o)
		assert.Equal(t, ErrInvalidName, err)
	})
}

func TestDomain_UpdateMemberRole(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("admin promotes member", func(t *testing.T) {
		f := setupDomain()
		actorID, targetID := uuid.New(), uuid.New()

		f.members.On("Get", ctx, actorID, orgID).Return(member(actorID, orgID, RoleAdmin), nil)
		f.members.On("Get", ctx, targetID, orgID).Return(member(targetID, orgID, RoleMember), nil)
		f.members.On("Upsert", ctx, mock.MatchedBy(func(m *Membership) bool {
			return m.UserID == targetID && m.Role == RoleAdmin
		})).Return(nil)

		err := f.domain.UpdateMemberRole(ctx, orgID, actorID, targetID, RoleAdmin)

		require.NoError(t, err)
		f.members.AssertExpectations(t)
	})

	t.Run("admin cannot grant owner", func(t *testing.T) {
		f := setupDomain()
		actorID, targetID := uuid.New(), uuid.New()

		f.members.On("Get", ctx, actorID, orgID).Return(member(actorID, orgID, RoleAdmin), nil)
		f.members.On("Get", ctx, targetID, orgID).Return(member(targetID, orgID, RoleMember), nil)

		err := f.domain.UpdateMemberRole(ctx, orgID, actorID, targetID, RoleOwner)

		assert.Equal(t, ErrCannotAssignRole, err)
		f.members.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("admin cannot demote owner", func(t *testing.T) {
		f := setupDomain()
		actorID, targetID := uuid.New(), uuid.New()

		f.members.On("Get", ctx, actorID, orgID).Return(member(actorID, orgID, RoleAdmin), nil)
		f.members.On("Get", ctx, targetID, orgID).Return(member(targetID, orgID, RoleOwner), nil)

		err := f.domain.UpdateMemberRole(ctx, orgID, actorID, targetID, RoleMember)

		assert.Equal(t, ErrInsufficientPermission, err)
	})

	t.Run("last owner cannot step down", func(t *testing.T) {
		f := setupDomain()
		ownerID := uuid.New()

		f.members.On("Get", ctx, ownerID, orgID).Return(member(ownerID, orgID, RoleOwner), nil)
		f.members.On("CountByRole", ctx, orgID, RoleOwner).Return(1, nil)

		err := f.domain.UpdateMemberRole(ctx, orgID, ownerID, ownerID, RoleAdmin)

		assert.Equal(t, ErrLastOwner, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := setupDomain()

		err := f.domain.UpdateMemberRole(ctx, orgID, uuid.New(), uuid.New(), Role("guest"))

		assert.Equal(t, ErrInvalidRole, err)
	})
}

func TestDomain_RemoveMember(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("member leaves", func(t *testing.T) {
		f := setupDomain()
		userID := uuid.New()

		f.members.On("Get", ctx, userID, orgID).Return(member(userID, orgID, RoleMember), nil)
		f.members.On("Delete", ctx, userID, orgID).Return(nil)

		require.NoError(t, f.domain.RemoveMember(ctx, orgID, userID, userID))
		f.members.AssertExpectations(t)
	})

	t.Run("member cannot remove others", func(t *testing.T) {
		f := setupDomain()
		actorID, targetID := uuid.New(), uuid.New()

		f.members.On("Get", ctx, targetID, orgID).Return(member(targetID, orgID, RoleMember), nil)
		f.members.On("Get", ctx, actorID, orgID).Return(member(actorID, orgID, RoleMember), nil)

		err := f.domain.RemoveMember(ctx, orgID, actorID, targetID)

		assert.Equal(t, ErrInsufficientPermission, err)
		f.members.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("owner removes co-owner", func(t *testing.T) {
		f := setupDomain()
		actorID, targetID := uuid.New(), uuid.New()

		f.members.On("Get", ctx, targetID, orgID).Return(member(targetID, orgID, RoleOwner), nil)
		f.members.On("Get", ctx, actorID, orgID).Return(member(actorID, orgID, RoleOwner), nil)
		f.members.On("CountByRole", ctx, orgID, RoleOwner).Return(2, nil)
		f.members.On("Delete", ctx, targetID, orgID).Return(nil)

		require.NoError(t, f.domain.RemoveMember(ctx, orgID, actorID, targetID))
	})

	t.Run("unknown target", func(t *testing.T) {
		f := setupDomain()
		targetID := uuid.New()

		f.members.On("Get", ctx, targetID, orgID).Return(nil, ErrMemberNotFound)

		err := f.domain.RemoveMember(ctx, orgID, uuid.New(), targetID)

		assert.Equal(t, ErrMemberNotFound, err)
	})
}

func TestDomain_CreateApp(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("org-wide app", func(t *testing.T) {
		f := setupDomain()

		f.orgs.On("GetByID", ctx, orgID).Return(&Organization{ID: orgID}, nil)
		f.apps.On("Create", ctx, mock.AnythingOfType("*org.App")).Return(nil)

		app, err := f.domain.CreateApp(ctx, orgID, nil, "dashboard")

		require.NoError(t, err)
		assert.True(t, app.IsOrgWide())
		f.resources.AssertNotCalled(t, "ResolveTeam", mock.Anything, mock.Anything)
	})

	t.Run("team from another org", func(t *testing.T) {
		f := setupDomain()
		teamID := uuid.New()

		f.orgs.On("GetByID", ctx, orgID).Return(&Organization{ID: orgID}, nil)
		f.resources.On("ResolveTeam", ctx, teamID).Return(uuid.New(), nil)

		app, err := f.domain.CreateApp(ctx, orgID, &teamID, "dashboard")

		assert.Nil(t, app)
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})
}
