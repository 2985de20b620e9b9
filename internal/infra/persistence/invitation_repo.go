package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uniedit/orgauth/internal/domain/invitation"
	"github.com/uniedit/orgauth/internal/infra/persistence/entity"
	"github.com/uniedit/orgauth/internal/utils/pagination"
)

// InvitationRepository implements invitation.Repository.
type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository.
func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

var _ invitation.Repository = (*InvitationRepository)(nil)

func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	err := conn(ctx, r.db).Create(entity.FromDomainInvitation(inv)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return invitation.ErrIssueConflict
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *InvitationRepository) GetByTokenDigest(ctx context.Context, digest string) (*invitation.Invitation, error) {
	return r.first(ctx, "token_digest = ?", digest)
}

func (r *InvitationRepository) first(ctx context.Context, query string, arg any) (*invitation.Invitation, error) {
	var e entity.InvitationEntity
	err := conn(ctx, r.db).Where(query, arg).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invitation.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *InvitationRepository) SupersedePending(ctx context.Context, orgID uuid.UUID, email string, at time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Model(&entity.InvitationEntity{}).
		Where("org_id = ? AND email = ? AND status = ?", orgID, email, invitation.StatusPending.String()).
		Updates(resolvedColumns(invitation.StatusSuperseded, at, nil))
	if result.Error != nil {
		return 0, fmt.Errorf("supersede pending invitation: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Transition is a single conditional UPDATE, so of two concurrent callers
// at most one sees a changed row.
func (r *InvitationRepository) Transition(ctx context.Context, id uuid.UUID, from, to invitation.Status, at time.Time, by *uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.InvitationEntity{}).
		Where("id = ? AND status = ?", id, from.String()).
		Updates(resolvedColumns(to, at, by))
	if result.Error != nil {
		return false, fmt.Errorf("transition invitation: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *InvitationRepository) ExpireStale(ctx context.Context, f invitation.Filter, cutoff time.Time) (int64, error) {
	result := applyFilter(conn(ctx, r.db).Model(&entity.InvitationEntity{}), f).
		Where("status = ? AND sent_at < ?", invitation.StatusPending.String(), cutoff.UTC()).
		Updates(resolvedColumns(invitation.StatusExpired, time.Now(), nil))
	if result.Error != nil {
		return 0, fmt.Errorf("expire stale invitations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *InvitationRepository) ListPending(ctx context.Context, f invitation.Filter, cutoff time.Time, after *pagination.Position, limit int) ([]*invitation.Invitation, error) {
	q := applyFilter(conn(ctx, r.db), f).
		Where("status = ? AND sent_at >= ?", invitation.StatusPending.String(), cutoff.UTC())
	if after != nil {
		at := after.At.UTC()
		q = q.Where("(sent_at > ? OR (sent_at = ? AND id > ?))", at, at, after.ID.String())
	}

	var entities []entity.InvitationEntity
	err := q.Order("sent_at ASC, id ASC").Limit(limit).Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}

	out := make([]*invitation.Invitation, len(entities))
	for i := range entities {
		out[i] = entities[i].ToDomain()
	}
	return out, nil
}

func applyFilter(q *gorm.DB, f invitation.Filter) *gorm.DB {
	if f.OrgID != nil {
		return q.Where("org_id = ?", *f.OrgID)
	}
	return q.Where("email = ?", f.Email)
}

// resolvedColumns clears pending_key so the (org, email) slot is free for
// the next invitation.
func resolvedColumns(to invitation.Status, at time.Time, by *uuid.UUID) map[string]any {
	cols := map[string]any{
		"status":      to.String(),
		"resolved_at": at.UTC(),
		"pending_key": gorm.Expr("NULL"),
		"resolved_by": gorm.Expr("NULL"),
	}
	if by != nil {
		cols["resolved_by"] = *by
	}
	return cols
}
