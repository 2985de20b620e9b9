// Package memory provides an in-process store implementing every
// persistence port. It backs database.driver=memory and tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/domain/org"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

type memberKey struct {
	userID uuid.UUID
	orgID  uuid.UUID
}

type state struct {
	orgs        map[uuid.UUID]org.Organization
	members     map[memberKey]org.Membership
	teams       map[uuid.UUID]org.Team
	apps        map[uuid.UUID]org.App
	invitations map[uuid.UUID]invitation.Invitation
	pending     map[string]uuid.UUID
}

func newState() state {
	return state{
		orgs:        make(map[uuid.UUID]org.Organization),
		members:     make(map[memberKey]org.Membership),
		teams:       make(map[uuid.UUID]org.Team),
		apps:        make(map[uuid.UUID]org.App),
		invitations: make(map[uuid.UUID]invitation.Invitation),
		pending:     make(map[string]uuid.UUID),
	}
}

func orgsOf(st *state) map[uuid.UUID]org.Organization { return st.orgs }
func membersOf(st *state) map[memberKey]org.Membership { return st.members }
func teamsOf(st *state) map[uuid.UUID]org.Team { return st.teams }
func appsOf(st *state) map[uuid.UUID]org.App { return st.apps }
func invitationsOf(st *state) map[uuid.UUID]invitation.Invitation { return st.invitations }
func pendingOf(st *state) map[string]uuid.UUID { return st.pending }

// undoLog holds the inverse of every write a transaction made, in order.
type undoLog struct {
	steps []func(st *state)
}

// remember records how to restore key in the map picked by field if the
// transaction carried by ctx fails. Callers hold s.mu.
func remember[K comparable, V any](ctx context.Context, st *state, field func(*state) map[K]V, key K) {
	log, ok := ctx.Value(txKey{}).(*undoLog)
	if !ok {
		return
	}
	prev, had := field(st)[key]
	log.steps = append(log.steps, func(st *state) {
		if had {
			field(st)[key] = prev
		} else {
			delete(field(st), key)
		}
	})
}

// Store keeps values, never pointers handed out by callers, so results can
// be mutated freely.
type Store struct {
	mu   sync.RWMutex
	data state

	// txMu serializes transactions. A failed transaction undoes its own
	// writes only; writes made outside it meanwhile survive.
	txMu sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

var (
	_ org.OrganizationRepository = (*Store)(nil)
	_ org.MembershipRepository   = (*Store)(nil)
	_ org.ResourceResolver       = (*Store)(nil)
	_ org.Transactor             = (*Store)(nil)
	_ org.TeamRepository         = teams{}
	_ org.AppRepository          = apps{}
	_ invitation.Repository      = invitations{}
)

type txKey struct{}

// RunInTransaction implements org.Transactor.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*undoLog); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	hookCtx, finish := org.WithCommitHooks(ctx)
	err := fn(context.WithValue(hookCtx, txKey{}, log))
	if err != nil {
		s.mu.Lock()
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i](&s.data)
		}
		s.mu.Unlock()
	}
	finish(err == nil)
	return err
}

// ===== Organizations =====

func (s *Store) Create(ctx context.Context, o *org.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remember(ctx, &s.data, orgsOf, o.ID)
	s.data.orgs[o.ID] = *o
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*org.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.data.orgs[id]
	if !ok {
		return nil, org.ErrOrganizationNotFound
	}
	return &o, nil
}

func (s *Store) ListByUser(_ context.Context, userID uuid.UUID) ([]*org.MembershipWithOrg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*org.MembershipWithOrg
	for k, m := range s.data.members {
		if k.userID != userID {
			continue
		}
		o, ok := s.data.orgs[k.orgID]
		if !ok {
			continue
		}
		out = append(out, &org.MembershipWithOrg{Organization: &o, Role: m.Role})
	}
	slices.SortFunc(out, func(a, b *org.MembershipWithOrg) int {
		return a.Organization.CreatedAt.Compare(b.Organization.CreatedAt)
	})
	return out, nil
}

// ===== Memberships =====

func (s *Store) Get(_ context.Context, userID, orgID uuid.UUID) (*org.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.data.members[memberKey{userID, orgID}]
	if !ok {
		return nil, org.ErrMemberNotFound
	}
	return &m, nil
}

func (s *Store) RoleOf(_ context.Context, userID, orgID uuid.UUID) (org.Role, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.data.members[memberKey{userID, orgID}]
	if !ok {
		return "", false, nil
	}
	return m.Role, true, nil
}

func (s *Store) Upsert(ctx context.Context, m *org.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey{m.UserID, m.OrgID}
	remember(ctx, &s.data, membersOf, key)
	if existing, ok := s.data.members[key]; ok {
		existing.Role = m.Role
		existing.UpdatedAt = m.UpdatedAt
		s.data.members[key] = existing
		return nil
	}
	s.data.members[key] = *m
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey{userID, orgID}
	if _, ok := s.data.members[key]; !ok {
		return org.ErrMemberNotFound
	}
	remember(ctx, &s.data, membersOf, key)
	delete(s.data.members, key)
	return nil
}

func (s *Store) ListByOrg(_ context.Context, orgID uuid.UUID) ([]*org.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*org.Membership
	for k, m := range s.data.members {
		if k.orgID == orgID {
			out = append(out, &m)
		}
	}
	slices.SortFunc(out, func(a, b *org.Membership) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
	return out, nil
}

func (s *Store) CountByRole(_ context.Context, orgID uuid.UUID, role org.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k, m := range s.data.members {
		if k.orgID == orgID && m.Role == role {
			n++
		}
	}
	return n, nil
}

// ===== Teams and apps =====

type teams struct{ *Store }

type apps struct{ *Store }

// Teams returns the team repository view.
func (s *Store) Teams() org.TeamRepository { return teams{s} }

// Apps returns the app repository view.
func (s *Store) Apps() org.AppRepository { return apps{s} }

func (t teams) Create(ctx context.Context, team *org.Team) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	remember(ctx, &t.data, teamsOf, team.ID)
	t.data.teams[team.ID] = *team
	return nil
}

func (a apps) Create(ctx context.Context, app *org.App) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	remember(ctx, &a.data, appsOf, app.ID)
	a.data.apps[app.ID] = *app
	return nil
}

func (s *Store) ResolveTeam(_ context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.data.teams[teamID]
	if !ok {
		return uuid.Nil, org.ErrTeamNotFound
	}
	return t.OrgID, nil
}

func (s *Store) ResolveApp(_ context.Context, appID uuid.UUID) (*org.AppScope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.data.apps[appID]
	if !ok {
		return nil, org.ErrAppNotFound
	}
	if a.TeamID == nil {
		return &org.AppScope{OrgID: a.OrgID}, nil
	}
	t, ok := s.data.teams[*a.TeamID]
	if !ok {
		return nil, org.ErrAppNotFound
	}
	teamID := t.ID
	return &org.AppScope{TeamID: &teamID, OrgID: t.OrgID}, nil
}

// ===== Invitations =====

type invitations struct{ *Store }

// Invitations returns the invitation repository view.
func (s *Store) Invitations() invitation.Repository { return invitations{s} }

func pendingKey(orgID uuid.UUID, email string) string {
	return orgID.String() + ":" + email
}

func (s invitations) Create(ctx context.Context, inv *invitation.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.Status() == invitation.StatusPending {
		key := pendingKey(inv.OrgID(), inv.Email())
		if _, taken := s.data.pending[key]; taken {
			return invitation.ErrIssueConflict
		}
		remember(ctx, &s.data, pendingOf, key)
		s.data.pending[key] = inv.ID()
	}
	remember(ctx, &s.data, invitationsOf, inv.ID())
	s.data.invitations[inv.ID()] = *inv
	return nil
}

func (s invitations) GetByID(_ context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.data.invitations[id]
	if !ok {
		return nil, invitation.ErrInvitationNotFound
	}
	return &inv, nil
}

func (s invitations) GetByTokenDigest(_ context.Context, digest string) (*invitation.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.data.invitations {
		if inv.TokenDigest() == digest {
			return &inv, nil
		}
	}
	return nil, invitation.ErrInvitationNotFound
}

func (s invitations) SupersedePending(ctx context.Context, orgID uuid.UUID, email string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.data.pending[pendingKey(orgID, email)]
	if !ok {
		return 0, nil
	}
	if s.resolveLocked(ctx, id, invitation.StatusPending, invitation.StatusSuperseded, at, nil) {
		return 1, nil
	}
	return 0, nil
}

func (s invitations) Transition(ctx context.Context, id uuid.UUID, from, to invitation.Status, at time.Time, by *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(ctx, id, from, to, at, by), nil
}

func (s invitations) resolveLocked(ctx context.Context, id uuid.UUID, from, to invitation.Status, at time.Time, by *uuid.UUID) bool {
	inv, ok := s.data.invitations[id]
	if !ok || inv.Status() != from {
		return false
	}
	if from == invitation.StatusPending {
		key := pendingKey(inv.OrgID(), inv.Email())
		remember(ctx, &s.data, pendingOf, key)
		delete(s.data.pending, key)
	}
	remember(ctx, &s.data, invitationsOf, id)
	var actor *uuid.UUID
	if by != nil {
		v := *by
		actor = &v
	}
	inv.Resolve(to, at, actor)
	s.data.invitations[id] = inv
	return true
}

func matches(inv *invitation.Invitation, f invitation.Filter) bool {
	if f.OrgID != nil {
		return inv.OrgID() == *f.OrgID
	}
	return inv.Email() == f.Email
}

func (s invitations) ExpireStale(ctx context.Context, f invitation.Filter, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var n int64
	for id, inv := range s.data.invitations {
		if inv.Status() == invitation.StatusPending && matches(&inv, f) && inv.SentAt().Before(cutoff) {
			if s.resolveLocked(ctx, id, invitation.StatusPending, invitation.StatusExpired, now, nil) {
				n++
			}
		}
	}
	return n, nil
}

func (s invitations) ListPending(_ context.Context, f invitation.Filter, cutoff time.Time, after *pagination.Position, limit int) ([]*invitation.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*invitation.Invitation
	for _, inv := range s.data.invitations {
		if inv.Status() != invitation.StatusPending || !matches(&inv, f) || inv.SentAt().Before(cutoff) {
			continue
		}
		if after != nil && !after.After(inv.SentAt(), inv.ID()) {
			continue
		}
		out = append(out, &inv)
	}

	slices.SortFunc(out, func(a, b *invitation.Invitation) int {
		if c := a.SentAt().Compare(b.SentAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
