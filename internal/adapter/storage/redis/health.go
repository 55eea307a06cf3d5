package redis

import (
	"context"
	"fmt"

	"money-transfer-service/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// HealthCheck implements ports.HealthChecker for Redis.
type HealthCheck struct {
	client goredis.UniversalClient
}

// NewHealthCheck creates a Redis health checker.
func NewHealthCheck(client goredis.UniversalClient) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping checks Redis connectivity.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}

var _ ports.HealthChecker = (*HealthCheck)(nil)
