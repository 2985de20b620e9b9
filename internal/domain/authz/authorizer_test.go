package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/domain/org"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (*auth.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

type recorded struct {
	results []string
}

func (r *recorded) RecordAuthzDecision(result string) {
	r.results = append(r.results, result)
}

func setupAuthorizer() (*Authorizer, *mockVerifier, *mockStore, *recorded) {
	verifier := &mockVerifier{}
	store := &mockStore{}
	rec := &recorded{}
	e := NewEvaluator(store, &mockResources{}, DefaultConfig(), zap.NewNop())
	return NewAuthorizer(verifier, e, rec, zap.NewNop()), verifier, store, rec
}

func TestAuthorizer_AdminGuard(t *testing.T) {
	orgID := uuid.New()
	member := &auth.Identity{UserID: uuid.New(), Email: "member@example.com"}
	owner := &auth.Identity{UserID: uuid.New(), Email: "owner@example.com"}

	a, verifier, store, rec := setupAuthorizer()
	verifier.On("Verify", "member-token").Return(member, nil)
	verifier.On("Verify", "owner-token").Return(owner, nil)
	store.On("RoleOf", mock.Anything, member.UserID, orgID).Return(org.RoleMember, true, nil)
	store.On("RoleOf", mock.Anything, owner.UserID, orgID).Return(org.RoleOwner, true, nil)

	guard := OrgMember(orgID).AtLeast(org.RoleAdmin)

	_, err := a.Authorize(context.Background(), "member-token", guard)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := a.Authorize(context.Background(), "owner-token", guard)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	assert.Equal(t, []string{ResultForbidden, ResultAllowed}, rec.results)
}

func TestAuthorizer_InvalidToken(t *testing.T) {
	a, verifier, store, rec := setupAuthorizer()
	verifier.On("Verify", "garbage").Return(nil, auth.ErrInvalidToken)

	id, err := a.Authorize(context.Background(), "garbage", OrgMember(uuid.New()))

	assert.Nil(t, id)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	store.AssertNotCalled(t, "RoleOf", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{ResultUnauthenticated}, rec.results)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ResultAllowed, classify(nil))
	assert.Equal(t, ResultUnauthenticated, classify(ErrUnauthenticated))
	assert.Equal(t, ResultForbidden, classify(deny(OrgMember(uuid.New()), "x")))
	assert.Equal(t, ResultNotFound, classify(org.ErrTeamNotFound))
	assert.Equal(t, ResultError, classify(assert.AnError))
}
