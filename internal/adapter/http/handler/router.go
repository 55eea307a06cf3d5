package handler

import (
	"net/http"

	"money-transfer-service/internal/adapter/http/middleware"
	"money-transfer-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultMaxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	HTTPMetrics    *middleware.HTTPMetrics // nil = no request metrics
	MetricsHandler http.Handler            // nil = /metrics not exposed
	MaxBodyBytes   int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := deps.RateLimitRules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	accountHandler := NewAccountHandler(deps.LedgerSvc)
	transferHandler := NewTransferHandler(deps.LedgerSvc)

	v1 := r.Group("/api/v1")

	accounts := v1.Group("/accounts")
	{
		accounts.POST("", rl(middleware.GroupAccounts), accountHandler.Create)
		accounts.GET("/:id", rl(middleware.GroupReads), accountHandler.Get)
	}

	v1.POST("/transfers", rl(middleware.GroupTransfers), transferHandler.Transfer)

	withdrawals := v1.Group("/withdrawals")
	{
		withdrawals.POST("", rl(middleware.GroupWithdrawals), transferHandler.Withdraw)
		withdrawals.GET("/:id/status", rl(middleware.GroupReads), transferHandler.WithdrawalStatus)
	}

	return r
}
