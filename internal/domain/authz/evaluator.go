package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/domain/org"
)

// Evaluator runs guards against an identity.
type Evaluator struct {
	members   MembershipStore
	resources org.ResourceResolver
	cfg       *Config
	logger    *zap.Logger
}

// NewEvaluator creates a new guard evaluator.
func NewEvaluator(members MembershipStore, resources org.ResourceResolver, cfg *Config, logger *zap.Logger) *Evaluator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		members:   members,
		resources: resources,
		cfg:       cfg,
		logger:    logger,
	}
}

// Evaluate checks guards in order and stops at the first failure, so no
// lookup is made on behalf of a later guard. No guards means any
// authenticated identity passes.
func (e *Evaluator) Evaluate(ctx context.Context, id *auth.Identity, guards ...Guard) error {
	if id == nil || id.UserID == uuid.Nil {
		return ErrUnauthenticated
	}

	resolver := NewResolver(e.members)
	for _, g := range guards {
		if err := e.check(ctx, resolver, id, g); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) check(ctx context.Context, r *Resolver, id *auth.Identity, g Guard) error {
	switch g.kind {
	case KindOrgMember:
		return e.requireRole(ctx, r, id.UserID, g.target, g)

	case KindTeamMember:
		orgID, err := e.resources.ResolveTeam(ctx, g.target)
		if err != nil {
			return e.resolveFailed(g, err)
		}
		return e.requireRole(ctx, r, id.UserID, orgID, g)

	case KindAppMember:
		scope, err := e.resources.ResolveApp(ctx, g.target)
		if err != nil {
			return e.resolveFailed(g, err)
		}
		return e.requireRole(ctx, r, id.UserID, scope.OrgID, g)

	case KindSelfOrRole:
		if id.UserID == g.target {
			return nil
		}
		return e.requireRole(ctx, r, id.UserID, g.orgID, g)

	default:
		return deny(g, "unknown guard kind")
	}
}

func (e *Evaluator) requireRole(ctx context.Context, r *Resolver, userID, orgID uuid.UUID, g Guard) error {
	role, ok, err := r.RoleOf(ctx, userID, orgID)
	if err != nil {
		return fmt.Errorf("resolve membership: %w", err)
	}
	if !ok {
		return deny(g, "not a member")
	}
	if g.minRole != "" && !org.AtLeast(role, g.minRole) {
		return deny(g, fmt.Sprintf("role %s below %s", role, g.minRole))
	}
	return nil
}

func (e *Evaluator) resolveFailed(g Guard, err error) error {
	if !errors.Is(err, org.ErrResourceNotFound) {
		return fmt.Errorf("resolve %s: %w", g.kind, err)
	}
	if e.cfg.NotFoundPolicy == NotFoundExpose {
		return fmt.Errorf("%s: %w", g, ErrResourceNotFound)
	}
	return deny(g, "resource not found")
}
