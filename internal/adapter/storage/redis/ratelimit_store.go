package redis

import (
	"context"
	"fmt"
	"time"

	"money-transfer-service/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "mts:ratelimit:"

// RateLimitStore implements ports.RateLimitStore with fixed-window counters.
type RateLimitStore struct {
	client goredis.UniversalClient
	now    func() time.Time
}

// NewRateLimitStore creates a new Redis-backed rate limit store.
func NewRateLimitStore(client goredis.UniversalClient) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		now:    time.Now,
	}
}

// Allow counts a request against key in the current window.
// The counter key embeds the window index, so each window starts from zero
// and stale keys expire on their own.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	windowSecs := int64(window / time.Second)
	if windowSecs < 1 {
		return nil, fmt.Errorf("rate limit window %s: must be at least 1s", window)
	}

	windowID := s.now().Unix() / windowSecs
	redisKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowID)

	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window+time.Second)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit incr: %w", err)
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &ports.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (windowID + 1) * windowSecs,
	}, nil
}

var _ ports.RateLimitStore = (*RateLimitStore)(nil)
