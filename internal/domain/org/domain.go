package org

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNameLength = 100

// Domain implements organization, membership and resource management.
// Route-level guards decide who may call each operation; Domain enforces
// the invariants that depend on stored state (owner rules, role ceilings).
type Domain struct {
	orgs      OrganizationRepository
	members   MembershipRepository
	teams     TeamRepository
	apps      AppRepository
	resources ResourceResolver
	tx        Transactor
	logger    *zap.Logger
	now       func() time.Time
}

// NewDomain creates a new org domain.
func NewDomain(
	orgs OrganizationRepository,
	members MembershipRepository,
	teams TeamRepository,
	apps AppRepository,
	resources ResourceResolver,
	tx Transactor,
	logger *zap.Logger,
) *Domain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Domain{
		orgs:      orgs,
		members:   members,
		teams:     teams,
		apps:      apps,
		resources: resources,
		tx:        tx,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ========== Organization Operations ==========

// CreateOrganization creates an organization and makes the creator its owner.
func (d *Domain) CreateOrganization(ctx context.Context, creatorID uuid.UUID, name string) (*Organization, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	now := d.now()
	o := &Organization{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = d.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := d.orgs.Create(txCtx, o); err != nil {
			return err
		}
		return d.members.Upsert(txCtx, NewMembership(creatorID, o.ID, RoleOwner, now))
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("organization created",
		zap.String("org_id", o.ID.String()),
		zap.String("owner_id", creatorID.String()),
	)
	return o, nil
}

// ListMyOrganizations lists the organizations the user belongs to.
func (d *Domain) ListMyOrganizations(ctx context.Context, userID uuid.UUID) ([]*MembershipWithOrg, error) {
	return d.orgs.ListByUser(ctx, userID)
}

// ========== Member Operations ==========

// ListMembers lists the members of an organization.
func (d *Domain) ListMembers(ctx context.Context, orgID uuid.UUID) ([]*Membership, error) {
	return d.members.ListByOrg(ctx, orgID)
}

// UpdateMemberRole changes a member's role.
func (d *Domain) UpdateMemberRole(ctx context.Context, orgID, actorID, targetID uuid.UUID, role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}

	err := d.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		actor, err := d.members.Get(txCtx, actorID, orgID)
		if err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return ErrInsufficientPermission
			}
			return err
		}

		target, err := d.members.Get(txCtx, targetID, orgID)
		if err != nil {
			return err
		}

		if !actor.Role.CanAssign(role) {
			return ErrCannotAssignRole
		}
		if target.Role == RoleOwner && actor.Role != RoleOwner {
			return ErrInsufficientPermission
		}
		if target.Role == role {
			return nil
		}
		if target.Role == RoleOwner {
			if err := d.ensureAnotherOwner(txCtx, orgID); err != nil {
				return err
			}
		}

		target.Role = role
		target.UpdatedAt = d.now()
		return d.members.Upsert(txCtx, target)
	})
	if err != nil {
		return err
	}

	d.logger.Info("member role updated",
		zap.String("org_id", orgID.String()),
		zap.String("user_id", targetID.String()),
		zap.String("role", role.String()),
		zap.String("updated_by", actorID.String()),
	)
	return nil
}

// RemoveMember removes a member. Members may always remove themselves.
func (d *Domain) RemoveMember(ctx context.Context, orgID, actorID, targetID uuid.UUID) error {
	err := d.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		target, err := d.members.Get(txCtx, targetID, orgID)
		if err != nil {
			return err
		}

		if actorID != targetID {
			actor, err := d.members.Get(txCtx, actorID, orgID)
			if err != nil {
				if errors.Is(err, ErrMemberNotFound) {
					return ErrInsufficientPermission
				}
				return err
			}
			if !actor.Role.IsAtLeast(RoleAdmin) {
				return ErrInsufficientPermission
			}
			if target.Role == RoleOwner && actor.Role != RoleOwner {
				return ErrInsufficientPermission
			}
		}

		if target.Role == RoleOwner {
			if err := d.ensureAnotherOwner(txCtx, orgID); err != nil {
				return err
			}
		}

		return d.members.Delete(txCtx, targetID, orgID)
	})
	if err != nil {
		return err
	}

	d.logger.Info("member removed",
		zap.String("org_id", orgID.String()),
		zap.String("user_id", targetID.String()),
		zap.String("removed_by", actorID.String()),
	)
	return nil
}

func (d *Domain) ensureAnotherOwner(ctx context.Context, orgID uuid.UUID) error {
	owners, err := d.members.CountByRole(ctx, orgID, RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

// ========== Resource Operations ==========

// CreateTeam creates a team inside an organization.
func (d *Domain) CreateTeam(ctx context.Context, orgID uuid.UUID, name string) (*Team, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if _, err := d.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	t := &Team{
		ID:        uuid.New(),
		OrgID:     orgID,
		Name:      name,
		CreatedAt: d.now(),
	}
	if err := d.teams.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateApp creates an app owned by a team of the organization, or by the
// organization itself when teamID is nil.
func (d *Domain) CreateApp(ctx context.Context, orgID uuid.UUID, teamID *uuid.UUID, name string) (*App, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if _, err := d.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	if teamID != nil {
		teamOrg, err := d.resources.ResolveTeam(ctx, *teamID)
		if err != nil {
			return nil, err
		}
		if teamOrg != orgID {
			return nil, ErrTeamNotFound
		}
	}

	a := &App{
		ID:        uuid.New(),
		OrgID:     orgID,
		TeamID:    teamID,
		Name:      name,
		CreatedAt: d.now(),
	}
	if err := d.apps.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ResolveTeam returns the organization owning a team.
func (d *Domain) ResolveTeam(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	return d.resources.ResolveTeam(ctx, teamID)
}

// ResolveApp returns the team and organization owning an app.
func (d *Domain) ResolveApp(ctx context.Context, appID uuid.UUID) (*AppScope, error) {
	return d.resources.ResolveApp(ctx, appID)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
