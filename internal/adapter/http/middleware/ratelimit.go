package middleware

import (
	"fmt"
	"strconv"
	"time"

	"money-transfer-service/config"
	"money-transfer-service/internal/core/ports"
	"money-transfer-service/pkg/apperror"
	"money-transfer-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Rate limit groups.
const (
	GroupTransfers   = "transfers"
	GroupWithdrawals = "withdrawals"
	GroupAccounts    = "accounts"
	GroupReads       = "reads"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// RateLimitRules builds per-group rules from configuration. Groups with a
// non-positive limit are left out and therefore unlimited.
func RateLimitRules(cfg config.RateLimitConfig) map[string]RateLimitRule {
	rules := make(map[string]RateLimitRule, 4)
	add := func(group string, limit int64) {
		if limit > 0 {
			rules[group] = RateLimitRule{Limit: limit, Window: cfg.Window}
		}
	}
	add(GroupTransfers, cfg.Transfers)
	add(GroupWithdrawals, cfg.Withdrawals)
	add(GroupAccounts, cfg.Accounts)
	add(GroupReads, cfg.Reads)
	return rules
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group, keyed by client IP.
// Store failures let the request through.
func RateLimiter(store ports.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", c.ClientIP(), group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded().WithDetail("group", group))
			c.Abort()
			return
		}

		c.Next()
	}
}
