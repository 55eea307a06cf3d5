package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"money-transfer-service/config"
	httpHandler "money-transfer-service/internal/adapter/http/handler"
	"money-transfer-service/internal/adapter/http/middleware"
	"money-transfer-service/internal/adapter/provider"
	redisStorage "money-transfer-service/internal/adapter/storage/redis"
	"money-transfer-service/internal/core/ports"
	"money-transfer-service/internal/service"
	"money-transfer-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("MTS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.Server.Mode)
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Money Transfer Service")

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Withdrawal provider
	prov := provider.NewSimulated(provider.Options{
		ProcessingTime: cfg.Provider.ProcessingTime,
		FailureRate:    cfg.Provider.FailureRate,
		Latency:        cfg.Provider.Latency,
	}, logger.Component(log, "provider"))
	healthCheckers := []ports.HealthChecker{prov}

	// Ledger
	ledger := service.NewLedgerService(prov, service.LedgerOptions{
		ReconcileInterval:       cfg.Ledger.ReconcileInterval,
		ProviderTimeout:         cfg.Ledger.ProviderTimeout,
		MaxConcurrentReconciles: cfg.Ledger.MaxConcurrentReconciles,
		MaxSubmitAttempts:       cfg.Ledger.MaxSubmitAttempts,
	}, service.NewMetrics(reg), logger.Component(log, "ledger"))

	if err := seedAccounts(ctx, ledger, cfg.Seed.Accounts, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed accounts")
	}

	// Optional Redis-backed rate limiting
	var rateLimitStore ports.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected, rate limiting enabled")

		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledger,
		RateLimitStore: rateLimitStore,
		RateLimitRules: middleware.RateLimitRules(cfg.RateLimit),
		HealthCheckers: healthCheckers,
		HTTPMetrics:    middleware.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         logger.Component(log, "http"),
	})

	if err := ledger.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start reconciler")
	}

	// HTTP Server with graceful shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := ledger.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Reconciler did not stop cleanly")
	}

	snap := ledger.Snapshot()
	log.Info().
		Int("accounts", len(snap.Accounts)).
		Int("pending_withdrawals", len(snap.Pending)).
		Str("holdings", snap.Holdings().String()).
		Msg("Server exited")
}

// seedAccounts creates the configured opening accounts. Any failure aborts startup.
func seedAccounts(ctx context.Context, ledger ports.LedgerService, seeds []config.SeedAccount, log zerolog.Logger) error {
	for _, s := range seeds {
		id, balance, err := s.Parse()
		if err != nil {
			return err
		}
		acc, err := ledger.CreateAccount(ctx, ports.CreateAccountRequest{
			ID:             id,
			Name:           s.Name,
			InitialBalance: balance,
		})
		if err != nil {
			return fmt.Errorf("seed account %s: %w", s.ID, err)
		}
		log.Info().
			Str("account_id", acc.ID.String()).
			Str("balance", acc.Balance.String()).
			Msg("Seeded account")
	}
	return nil
}
