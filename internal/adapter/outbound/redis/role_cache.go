package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/domain/org"
)

const roleKeyPrefix = "orgauth:role:"

// CacheRecorder receives hit/miss counts.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

type noopCacheRecorder struct{}

func (noopCacheRecorder) RecordCacheHit(string)  {}
func (noopCacheRecorder) RecordCacheMiss(string) {}

// RoleCache caches positive role lookups in front of a membership
// repository. Misses are never cached, so a new membership is visible
// immediately; writes through the cache invalidate the entry.
type RoleCache struct {
	org.MembershipRepository
	client   *redis.Client
	ttl      time.Duration
	recorder CacheRecorder
	logger   *zap.Logger
}

// NewRoleCache wraps next with a redis cache.
func NewRoleCache(next org.MembershipRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RoleCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleCache{
		MembershipRepository: next,
		client:               client,
		ttl:                  ttl,
		recorder:             noopCacheRecorder{},
		logger:               logger,
	}
}

// WithRecorder sets the hit/miss recorder.
func (c *RoleCache) WithRecorder(r CacheRecorder) *RoleCache {
	if r != nil {
		c.recorder = r
	}
	return c
}

var _ org.MembershipRepository = (*RoleCache)(nil)

func roleKey(userID, orgID uuid.UUID) string {
	return roleKeyPrefix + orgID.String() + ":" + userID.String()
}

// RoleOf returns the cached role, falling back to the repository. Redis
// failures degrade to uncached lookups.
func (c *RoleCache) RoleOf(ctx context.Context, userID, orgID uuid.UUID) (org.Role, bool, error) {
	key := roleKey(userID, orgID)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if role := org.Role(val); role.IsValid() {
			c.recorder.RecordCacheHit("role")
			return role, true, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("role cache read failed", zap.Error(err))
	}

	c.recorder.RecordCacheMiss("role")
	role, ok, err := c.MembershipRepository.RoleOf(ctx, userID, orgID)
	if err != nil || !ok {
		return role, ok, err
	}

	if err := c.client.Set(ctx, key, role.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("role cache write failed", zap.Error(err))
	}
	return role, true, nil
}

func (c *RoleCache) Upsert(ctx context.Context, m *org.Membership) error {
	if err := c.MembershipRepository.Upsert(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, m.UserID, m.OrgID)
	return nil
}

func (c *RoleCache) Delete(ctx context.Context, userID, orgID uuid.UUID) error {
	if err := c.MembershipRepository.Delete(ctx, userID, orgID); err != nil {
		return err
	}
	c.invalidate(ctx, userID, orgID)
	return nil
}

// invalidate drops the entry after the surrounding transaction commits, so
// a concurrent RoleOf cannot cache the old row again.
func (c *RoleCache) invalidate(ctx context.Context, userID, orgID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	org.AfterCommit(ctx, func() { c.drop(ctx, userID, orgID) })
}

func (c *RoleCache) drop(ctx context.Context, userID, orgID uuid.UUID) {
	if err := c.client.Del(ctx, roleKey(userID, orgID)).Err(); err != nil {
		c.logger.Warn("role cache invalidation failed",
			zap.String("user_id", userID.String()),
			zap.String("org_id", orgID.String()),
			zap.Error(err),
		)
	}
}
