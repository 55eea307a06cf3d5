package ports

import "context"

//go:generate mockgen -source=health.go -destination=mocks/mock_health.go -package=mocks

// HealthChecker checks the health of a runtime dependency.
type HealthChecker interface {
	// Ping returns nil if the dependency is reachable.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g. "redis", "withdrawal-provider").
	Name() string
}
