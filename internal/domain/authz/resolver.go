package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/org"
)

// MembershipStore answers role lookups.
type MembershipStore interface {
	RoleOf(ctx context.Context, userID, orgID uuid.UUID) (role org.Role, ok bool, err error)
}

type membershipKey struct {
	userID uuid.UUID
	orgID  uuid.UUID
}

type membershipEntry struct {
	role org.Role
	ok   bool
}

// Resolver memoizes role lookups for a single authorization pass.
// It is not safe for concurrent use; create one per pass.
type Resolver struct {
	store   MembershipStore
	seen    map[membershipKey]membershipEntry
	lookups int
}

// NewResolver creates a resolver over the store.
func NewResolver(store MembershipStore) *Resolver {
	return &Resolver{
		store: store,
		seen:  make(map[membershipKey]membershipEntry),
	}
}

// RoleOf returns the user's role in the organization. A missing membership
// is reported with ok == false and a nil error. Errors are not memoized.
func (r *Resolver) RoleOf(ctx context.Context, userID, orgID uuid.UUID) (org.Role, bool, error) {
	key := membershipKey{userID: userID, orgID: orgID}
	if e, hit := r.seen[key]; hit {
		return e.role, e.ok, nil
	}

	role, ok, err := r.store.RoleOf(ctx, userID, orgID)
	r.lookups++
	if err != nil {
		return "", false, err
	}

	r.seen[key] = membershipEntry{role: role, ok: ok}
	return role, ok, nil
}

// Lookups returns how many times the underlying store was queried.
func (r *Resolver) Lookups() int {
	return r.lookups
}
