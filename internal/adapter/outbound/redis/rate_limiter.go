package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/uniedit/orgauth/internal/domain/invitation"
)

const rateLimitKeyPrefix = "orgauth:ratelimit:"

// RateLimiter is a sliding-window limiter over a sorted set per key.
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit events per window for
// each key. scope namespaces the keys.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

var _ invitation.RateLimiter = (*RateLimiter)(nil)

// allowScript trims the window, then adds n members only if the key stays
// within the limit. The check and the add run as one step.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local n = tonumber(ARGV[4])
	local batch = ARGV[5]
	local expiry = tonumber(ARGV[6])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)
	if current + n > limit then
		return 0
	end

	for i = 1, n do
		redis.call('ZADD', key, now, batch .. '-' .. i)
	end
	redis.call('PEXPIRE', key, expiry)
	return 1
`)

// Allow records n events for key if that keeps it within the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string, n int) (bool, error) {
	if n <= 0 {
		return true, nil
	}
	if n > r.limit {
		return false, nil
	}

	now := r.now().UnixNano()
	allowed, err := allowScript.Run(ctx, r.client, []string{r.key(key)},
		now,
		now-r.window.Nanoseconds(),
		r.limit,
		n,
		uuid.NewString(),
		r.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return allowed == 1, nil
}

func (r *RateLimiter) key(key string) string {
	return rateLimitKeyPrefix + r.scope + ":" + key
}

// Remaining returns how many events key may still record in the window.
func (r *RateLimiter) Remaining(ctx context.Context, key string) (int, error) {
	fullKey := r.key(key)
	windowStart := r.now().UnixNano() - r.window.Nanoseconds()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return max(r.limit-int(countCmd.Val()), 0), nil
}
