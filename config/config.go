package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"money-transfer-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig configures the optional redis backend used for rate limiting.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type LedgerConfig struct {
	ReconcileInterval       time.Duration `mapstructure:"reconcile_interval"`
	ProviderTimeout         time.Duration `mapstructure:"provider_timeout"`
	MaxConcurrentReconciles int           `mapstructure:"max_concurrent_reconciles"`
	MaxSubmitAttempts       int           `mapstructure:"max_submit_attempts"`
}

// ProviderConfig tunes the simulated withdrawal provider.
type ProviderConfig struct {
	ProcessingTime time.Duration `mapstructure:"processing_time"`
	FailureRate    float64       `mapstructure:"failure_rate"`
	Latency        time.Duration `mapstructure:"latency"`
}

// RateLimitConfig holds per-route-group request limits per window. Requires redis.
type RateLimitConfig struct {
	Window      time.Duration `mapstructure:"window"`
	Transfers   int64         `mapstructure:"transfers"`
	Withdrawals int64         `mapstructure:"withdrawals"`
	Accounts    int64         `mapstructure:"accounts"`
	Reads       int64         `mapstructure:"reads"`
}

type SeedConfig struct {
	Accounts []SeedAccount `mapstructure:"accounts"`
}

// SeedAccount is an account created at startup.
type SeedAccount struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Balance string `mapstructure:"balance"`
}

// Parse validates the seed entry.
func (s SeedAccount) Parse() (uuid.UUID, domain.Amount, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return uuid.Nil, domain.Amount{}, fmt.Errorf("seed account %q: invalid id: %w", s.ID, err)
	}
	balance, err := domain.ParseAmount(s.Balance)
	if err != nil {
		return uuid.Nil, domain.Amount{}, fmt.Errorf("seed account %s: %w", s.ID, err)
	}
	return id, balance, nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Provider.FailureRate < 0 || c.Provider.FailureRate > 1 {
		errs = append(errs, fmt.Errorf("provider.failure_rate must be within [0,1], got %v", c.Provider.FailureRate))
	}
	if c.Ledger.ReconcileInterval <= 0 {
		errs = append(errs, errors.New("ledger.reconcile_interval must be positive"))
	}
	if c.Ledger.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("ledger.provider_timeout must be positive"))
	}
	if c.Ledger.MaxSubmitAttempts <= 0 {
		errs = append(errs, errors.New("ledger.max_submit_attempts must be positive"))
	}
	if c.Provider.Latency >= c.Ledger.ProviderTimeout {
		errs = append(errs, fmt.Errorf("provider.latency (%s) must be below ledger.provider_timeout (%s)",
			c.Provider.Latency, c.Ledger.ProviderTimeout))
	}
	if c.RateLimit.Window < time.Second {
		errs = append(errs, errors.New("rate_limit.window must be at least 1s"))
	}
	for _, s := range c.Seed.Accounts {
		if _, _, err := s.Parse(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MTS_ (Money Transfer Service).
// Nested keys use underscore: MTS_LEDGER_RECONCILE_INTERVAL, MTS_REDIS_ENABLED, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("ledger.reconcile_interval", "1s")
	v.SetDefault("ledger.provider_timeout", "2s")
	v.SetDefault("ledger.max_concurrent_reconciles", 16)
	v.SetDefault("ledger.max_submit_attempts", 5)
	v.SetDefault("provider.processing_time", "3s")
	v.SetDefault("provider.failure_rate", 0.2)
	v.SetDefault("provider.latency", "0s")
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.transfers", 120)
	v.SetDefault("rate_limit.withdrawals", 30)
	v.SetDefault("rate_limit.accounts", 30)
	v.SetDefault("rate_limit.reads", 600)
	v.SetDefault("seed.accounts", []map[string]any{
		{"id": "12345678-abcd-abcd-1234-000000000001", "name": "Boku User 1", "balance": "1000"},
		{"id": "12345678-abcd-abcd-1234-000000000002", "name": "Boku User 2", "balance": "500"},
	})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// MTS_LEDGER_PROVIDER_TIMEOUT -> ledger.provider_timeout
	v.SetEnvPrefix("MTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
