package invitation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

// Mock implementations

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, inv *Invitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invitation), args.Error(1)
}

func (m *mockRepo) GetByTokenDigest(ctx context.Context, digest string) (*Invitation, error) {
	args := m.Called(ctx, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invitation), args.Error(1)
}

func (m *mockRepo) SupersedePending(ctx context.Context, orgID uuid.UUID, email string, at time.Time) (int64, error) {
	args := m.Called(ctx, orgID, email, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) Transition(ctx context.Context, id uuid.UUID, from, to Status, at time.Time, by *uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, from, to, at, by)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) ExpireStale(ctx context.Context, f Filter, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, f, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) ListPending(ctx context.Context, f Filter, cutoff time.Time, after *pagination.Position, limit int) ([]*Invitation, error) {
	args := m.Called(ctx, f, cutoff, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Invitation), args.Error(1)
}

type mockMembers struct {
	mock.Mock
}

func (m *mockMembers) Get(ctx context.Context, userID, orgID uuid.UUID) (*org.Membership, error) {
	args := m.Called(ctx, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*org.Membership), args.Error(1)
}

func (m *mockMembers) Upsert(ctx context.Context, ms *org.Membership) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

type mockOrgs struct {
	mock.Mock
}

func (m *mockOrgs) GetByID(ctx context.Context, id uuid.UUID) (*org.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*org.Organization), args.Error(1)
}

type mockTransactor struct{}

func (mockTransactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []*Notification
	err  error
}

func (m *mockNotifier) NotifyInvitation(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return m.err
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, n int) (bool, error) {
	args := m.Called(ctx, key, n)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	domain   *Domain
	repo     *mockRepo
	members  *mockMembers
	orgs     *mockOrgs
	notifier *mockNotifier
	tokens   *TokenMinter
	now      time.Time
}

func setupDomain(opts ...Option) *fixture {
	tokens, _ := NewTokenMinter("test-secret", 16)
	f := &fixture{
		repo:     &mockRepo{},
		members:  &mockMembers{},
		orgs:     &mockOrgs{},
		notifier: &mockNotifier{},
		tokens:   tokens,
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := DefaultConfig()
	cfg.BaseURL = "https://app.example.com/"
	opts = append([]Option{
		WithNotifier(f.notifier),
		WithClock(func() time.Time { return f.now }),
	}, opts...)
	f.domain = NewDomain(f.repo, f.members, f.orgs, mockTransactor{}, tokens, cfg, zap.NewNop(), opts...)
	return f
}

func (f *fixture) pending(orgID uuid.UUID, email string, role org.Role, sentAt time.Time) (*Invitation, string) {
	nonce, _ := f.tokens.NewNonce()
	inv := NewInvitation(orgID, email, role, uuid.New(), nonce, sentAt)
	token := f.tokens.Token(inv.ID(), nonce)
	inv.SetTokenDigest(f.tokens.Digest(token))
	return inv, token
}

func TestDomain_CreateInvites(t *testing.T) {
	orgID, adminID := uuid.New(), uuid.New()
	organization := &org.Organization{ID: orgID, Name: "Acme"}
	admin := &org.Membership{UserID: adminID, OrgID: orgID, Role: org.RoleAdmin}

	t.Run("success", func(t *testing.T) {
		f := setupDomain()
		f.orgs.On("GetByID", mock.Anything, orgID).Return(organization, nil)
		f.members.On("Get", mock.Anything, adminID, orgID).Return(admin, nil)
		f.repo.On("SupersedePending", mock.Anything, orgID, mock.Anything, mock.Anything).Return(int64(0), nil)
		f.repo.On("Create", mock.Anything, mock.AnythingOfType("*invitation.Invitation")).Return(nil)

		issued, err := f.domain.CreateInvites(context.Background(), orgID,
			[]string{" A@X.com", "b@x.com", "a@x.com", ""}, org.RoleMember, adminID)

		require.NoError(t, err)
		require.Len(t, issued, 2)
		assert.Equal(t, "a@x.com", issued[0].Invitation.Email())
		assert.Equal(t, "b@x.com", issued[1].Invitation.Email())
		for _, it := range issued {
			assert.NotEmpty(t, it.Token)
			assert.Equal(t, f.tokens.Digest(it.Token), it.Invitation.TokenDigest())
			assert.Equal(t, "https://app.example.com/invitations/"+it.Token, it.AcceptURL)
			assert.Equal(t, StatusPending, it.Invitation.Status())
		}
		assert.NotEqual(t, issued[0].Token, issued[1].Token)
		assert.Len(t, f.notifier.sent, 2)
		f.repo.AssertNumberOfCalls(t, "SupersedePending", 2)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := setupDomain()
		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{"not-an-email"}, org.RoleMember, adminID)
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("no recipients", func(t *testing.T) {
		f := setupDomain()
		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{" ", ""}, org.RoleMember, adminID)
		assert.ErrorIs(t, err, ErrNoRecipients)
	})

	t.Run("batch too large", func(t *testing.T) {
		f := setupDomain()
		f.domain.cfg.MaxBatch = 1
		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com", "b@x.com"}, org.RoleMember, adminID)
		assert.ErrorIs(t, err, ErrBatchTooLarge)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := setupDomain()
		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com"}, org.Role("guest"), adminID)
		assert.ErrorIs(t, err, org.ErrInvalidRole)
	})

	t.Run("admin cannot invite owner", func(t *testing.T) {
		f := setupDomain()
		f.orgs.On("GetByID", mock.Anything, orgID).Return(organization, nil)
		f.members.On("Get", mock.Anything, adminID, orgID).Return(admin, nil)

		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com"}, org.RoleOwner, adminID)
		assert.ErrorIs(t, err, org.ErrCannotAssignRole)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("issuer not a member", func(t *testing.T) {
		f := setupDomain()
		f.orgs.On("GetByID", mock.Anything, orgID).Return(organization, nil)
		f.members.On("Get", mock.Anything, adminID, orgID).Return(nil, org.ErrMemberNotFound)

		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com"}, org.RoleMember, adminID)
		assert.ErrorIs(t, err, org.ErrInsufficientPermission)
	})

	t.Run("rate limited", func(t *testing.T) {
		limiter := &mockLimiter{}
		f := setupDomain(WithRateLimiter(limiter))
		f.orgs.On("GetByID", mock.Anything, orgID).Return(organization, nil)
		f.members.On("Get", mock.Anything, adminID, orgID).Return(admin, nil)
		limiter.On("Allow", mock.Anything, orgID.String()+":"+adminID.String(), 1).Return(false, nil)

		_, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com"}, org.RoleMember, adminID)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		limiter := &mockLimiter{}
		f := setupDomain(WithRateLimiter(limiter))
		f.orgs.On("GetByID", mock.Anything, orgID).Return(organization, nil)
		f.members.On("Get", mock.Anything, adminID, orgID).Return(admin, nil)
		limiter.On("Allow", mock.Anything, mock.Anything, 1).Return(false, errors.New("redis down"))
		f.repo.On("SupersedePending", mock.Anything, orgID, "a@x.com", mock.Anything).Return(int64(1), nil)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		issued, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com"}, org.RoleMember, adminID)
		require.NoError(t, err)
		assert.Len(t, issued, 1)
	})

	t.Run("notification failure does not fail issuance", func(t *testing.T) {
		f := setupDomain()
		f.notifier.err = errors.New("smtp down")
		f.orgs.On("GetByID", mock.Anything, orgID).Return(organization, nil)
		f.members.On("Get", mock.Anything, adminID, orgID).Return(admin, nil)
		f.repo.On("SupersedePending", mock.Anything, orgID, "a@x.com", mock.Anything).Return(int64(0), nil)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		issued, err := f.domain.CreateInvites(context.Background(), orgID, []string{"a@x.com"}, org.RoleMember, adminID)
		require.NoError(t, err)
		assert.Len(t, issued, 1)
	})
}

func TestDomain_Accept(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()

	t.Run("grants invited role", func(t *testing.T) {
		f := setupDomain()
		inv, token := f.pending(orgID, "a@x.com", org.RoleAdmin, f.now.Add(-time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, f.tokens.Digest(token)).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusAccepted, mock.Anything, &userID).Return(true, nil)
		f.members.On("Get", mock.Anything, userID, orgID).Return(nil, org.ErrMemberNotFound)
		f.members.On("Upsert", mock.Anything, mock.AnythingOfType("*org.Membership")).Return(nil)

		m, err := f.domain.Accept(context.Background(), token, userID, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, org.RoleAdmin, m.Role)
		assert.Equal(t, orgID, m.OrgID)
		assert.Equal(t, userID, m.UserID)
	})

	t.Run("keeps higher existing role", func(t *testing.T) {
		f := setupDomain()
		joined := f.now.Add(-24 * time.Hour)
		inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusAccepted, mock.Anything, mock.Anything).Return(true, nil)
		f.members.On("Get", mock.Anything, userID, orgID).Return(&org.Membership{UserID: userID, OrgID: orgID, Role: org.RoleOwner, JoinedAt: joined}, nil)
		f.members.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		m, err := f.domain.Accept(context.Background(), token, userID, "")
		require.NoError(t, err)
		assert.Equal(t, org.RoleOwner, m.Role)
		assert.Equal(t, joined, m.JoinedAt)
	})

	t.Run("lost race", func(t *testing.T) {
		f := setupDomain()
		inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusAccepted, mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.domain.Accept(context.Background(), token, userID, "")
		assert.ErrorIs(t, err, ErrAlreadyResolved)
		f.members.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := setupDomain()
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(nil, ErrInvitationNotFound)

		_, err := f.domain.Accept(context.Background(), "nope", userID, "")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("empty token", func(t *testing.T) {
		f := setupDomain()
		_, err := f.domain.Accept(context.Background(), "  ", userID, "")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		f.repo.AssertNotCalled(t, "GetByTokenDigest", mock.Anything, mock.Anything)
	})

	t.Run("stored terminal states", func(t *testing.T) {
		tests := []struct {
			status Status
			want   error
		}{
			{StatusAccepted, ErrAlreadyResolved},
			{StatusRejected, ErrAlreadyResolved},
			{StatusExpired, ErrInvalidOrExpiredToken},
			{StatusRevoked, ErrInvalidOrExpiredToken},
			{StatusSuperseded, ErrInvalidOrExpiredToken},
		}
		for _, tt := range tests {
			t.Run(tt.status.String(), func(t *testing.T) {
				f := setupDomain()
				inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))
				inv.Resolve(tt.status, f.now, nil)
				f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)

				_, err := f.domain.Accept(context.Background(), token, userID, "")
				assert.ErrorIs(t, err, tt.want)
				f.repo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("expired by age while stored pending", func(t *testing.T) {
		f := setupDomain()
		inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-8*24*time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusExpired, mock.Anything, (*uuid.UUID)(nil)).Return(true, nil)

		_, err := f.domain.Accept(context.Background(), token, userID, "")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		f.repo.AssertCalled(t, "Transition", mock.Anything, inv.ID(), StatusPending, StatusExpired, mock.Anything, (*uuid.UUID)(nil))
		f.members.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("email binding", func(t *testing.T) {
		f := setupDomain()
		f.domain.cfg.RequireEmailMatch = true
		inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)

		_, err := f.domain.Accept(context.Background(), token, userID, "someone@else.com")
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})
}

func TestDomain_Reject(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		f := setupDomain()
		inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusRejected, mock.Anything, &userID).Return(true, nil)

		require.NoError(t, f.domain.Reject(context.Background(), token, userID, ""))
		f.members.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("lost race", func(t *testing.T) {
		f := setupDomain()
		inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))
		f.repo.On("GetByTokenDigest", mock.Anything, mock.Anything).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusRejected, mock.Anything, mock.Anything).Return(false, nil)

		assert.ErrorIs(t, f.domain.Reject(context.Background(), token, userID, ""), ErrAlreadyResolved)
	})
}

func TestDomain_Revoke(t *testing.T) {
	orgID, adminID := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		f := setupDomain()
		inv, _ := f.pending(orgID, "a@x.com", org.RoleMember, f.now)
		f.repo.On("GetByID", mock.Anything, inv.ID()).Return(inv, nil)
		f.repo.On("Transition", mock.Anything, inv.ID(), StatusPending, StatusRevoked, mock.Anything, &adminID).Return(true, nil)

		require.NoError(t, f.domain.Revoke(context.Background(), orgID, inv.ID(), adminID))
	})

	t.Run("other organization", func(t *testing.T) {
		f := setupDomain()
		inv, _ := f.pending(uuid.New(), "a@x.com", org.RoleMember, f.now)
		f.repo.On("GetByID", mock.Anything, inv.ID()).Return(inv, nil)

		assert.ErrorIs(t, f.domain.Revoke(context.Background(), orgID, inv.ID(), adminID), ErrInvitationNotFound)
	})

	for _, status := range []Status{StatusAccepted, StatusRejected, StatusExpired, StatusRevoked, StatusSuperseded} {
		t.Run("not pending "+status.String(), func(t *testing.T) {
			f := setupDomain()
			inv, _ := f.pending(orgID, "a@x.com", org.RoleMember, f.now)
			inv.Resolve(status, f.now, nil)
			f.repo.On("GetByID", mock.Anything, inv.ID()).Return(inv, nil)

			assert.ErrorIs(t, f.domain.Revoke(context.Background(), orgID, inv.ID(), adminID), ErrInvitationNotPending)
			f.repo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDomain_ListPendingForOrg(t *testing.T) {
	orgID := uuid.New()

	t.Run("next cursor only when more rows exist", func(t *testing.T) {
		f := setupDomain()
		a, _ := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-3*time.Hour))
		b, _ := f.pending(orgID, "b@x.com", org.RoleMember, f.now.Add(-2*time.Hour))
		c, _ := f.pending(orgID, "c@x.com", org.RoleMember, f.now.Add(-time.Hour))
		cutoff := f.now.Add(-f.domain.cfg.TTL)

		f.repo.On("ExpireStale", mock.Anything, ForOrg(orgID), cutoff).Return(int64(1), nil)
		f.repo.On("ListPending", mock.Anything, ForOrg(orgID), cutoff, (*pagination.Position)(nil), 3).
			Return([]*Invitation{a, b, c}, nil).Once()

		page, err := f.domain.ListPendingForOrg(context.Background(), orgID, "", 2)
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		require.True(t, page.HasMore())

		f.repo.On("ListPending", mock.Anything, ForOrg(orgID), cutoff, &pagination.Position{At: b.SentAt(), ID: b.ID()}, 3).
			Return([]*Invitation{c}, nil).Once()

		page, err = f.domain.ListPendingForOrg(context.Background(), orgID, page.NextCursor, 2)
		require.NoError(t, err)
		assert.Equal(t, []*Invitation{c}, page.Items)
		assert.False(t, page.HasMore())
	})

	t.Run("cursor from another org", func(t *testing.T) {
		f := setupDomain()
		token := pagination.EncodeCursor(pagination.Position{At: f.now, ID: uuid.New()},
			pagination.HashScope(ForOrg(uuid.New()).scope()...))

		_, err := f.domain.ListPendingForOrg(context.Background(), orgID, token, 2)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	})
}

func TestDomain_ListPendingForUser(t *testing.T) {
	f := setupDomain()
	orgID := uuid.New()
	inv, token := f.pending(orgID, "a@x.com", org.RoleMember, f.now.Add(-time.Hour))

	f.repo.On("ExpireStale", mock.Anything, ForEmail("a@x.com"), mock.Anything).Return(int64(0), nil)
	f.repo.On("ListPending", mock.Anything, ForEmail("a@x.com"), mock.Anything, (*pagination.Position)(nil), 21).
		Return([]*Invitation{inv}, nil)
	f.orgs.On("GetByID", mock.Anything, orgID).Return(&org.Organization{ID: orgID, Name: "Acme"}, nil).Once()

	page, err := f.domain.ListPendingForUser(context.Background(), " A@x.com ", "", 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, token, page.Items[0].Token)
	assert.Equal(t, "Acme", page.Items[0].OrgName)
	assert.False(t, page.HasMore())
}
