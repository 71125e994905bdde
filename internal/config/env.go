// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/tensorplex-labs/entrain/internal/coupling"
)

type AppConfig struct {
	Coupling  CouplingEnvConfig
	Server    ServerEnvConfig
	Client    ClientEnvConfig
	Redis     RedisEnvConfig
	Publisher PublisherEnvConfig
	Round     RoundEnvConfig
}

// LoadConfig reads the whole AppConfig from the process environment.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	return LoadConfigWith(ctx, envconfig.OsLookuper())
}

// LoadConfigWith reads the AppConfig through lookuper, which lets tests
// supply a map instead of the process environment.
func LoadConfigWith(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// CouplingEnvConfig holds the scorer parameters.
type CouplingEnvConfig struct {
	FieldWeight          float64 `env:"COUPLING_FIELD_WEIGHT, default=0.7"`
	ActionWeight         float64 `env:"COUPLING_ACTION_WEIGHT, default=0.3"`
	FieldScale           float64 `env:"COUPLING_FIELD_SCALE, default=1.0"`
	MinAgentsForCoupling int     `env:"COUPLING_MIN_AGENTS, default=2"`
}

// Options converts the environment values into scorer options.
func (c CouplingEnvConfig) Options() []coupling.Option {
	return []coupling.Option{
		coupling.WithFieldWeight(c.FieldWeight),
		coupling.WithActionWeight(c.ActionWeight),
		coupling.WithFieldScale(c.FieldScale),
		coupling.WithMinAgentsForCoupling(c.MinAgentsForCoupling),
	}
}

// ServerEnvConfig configures the scoring server.
type ServerEnvConfig struct {
	Host      string `env:"SERVER_HOST, default=0.0.0.0"`
	Port      int    `env:"SERVER_PORT, default=8888"`
	BodyLimit int    `env:"SERVER_BODY_LIMIT, default=4194304"`
}

// ClientEnvConfig configures the scoring client.
type ClientEnvConfig struct {
	ServerURL     string        `env:"SCORING_SERVER_URL, default=http://127.0.0.1:8888"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT, default=30s"`
}

// RedisEnvConfig configures the Redis round store. An empty host disables it.
type RedisEnvConfig struct {
	RedisHost     string        `env:"REDIS_HOST"`
	RedisPort     int           `env:"REDIS_PORT, default=6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB, default=0"`
	KeyPrefix     string        `env:"REDIS_KEY_PREFIX, default=entrain"`
	RoundTTL      time.Duration `env:"REDIS_ROUND_TTL, default=24h"`
}

func (r RedisEnvConfig) Enabled() bool {
	return r.RedisHost != ""
}

func (r RedisEnvConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.RedisHost, r.RedisPort)
}

// PublisherEnvConfig configures where round results are posted. An empty
// URL disables publishing.
type PublisherEnvConfig struct {
	PublishURL   string        `env:"PUBLISH_URL"`
	RetryMax     int           `env:"PUBLISH_RETRY_MAX, default=5"`
	RetryWaitMin time.Duration `env:"PUBLISH_RETRY_WAIT_MIN, default=500ms"`
	RetryWaitMax time.Duration `env:"PUBLISH_RETRY_WAIT_MAX, default=20s"`
	Timeout      time.Duration `env:"PUBLISH_TIMEOUT, default=30s"`
}

// RoundEnvConfig configures the round runner.
type RoundEnvConfig struct {
	Environment string `env:"ENVIRONMENT, default=dev"`
	// RoundInterval overrides the environment's default interval when set.
	RoundInterval time.Duration `env:"ROUND_INTERVAL"`
}

func (r RoundEnvConfig) Intervals() *IntervalConfig {
	intervals := *NewIntervalConfig(r.Environment)
	if r.RoundInterval > 0 {
		intervals.RoundInterval = r.RoundInterval
	}
	return &intervals
}
