package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/entrain/internal/coupling"
)

func TestLoadConfigWith_Defaults(t *testing.T) {
	cfg, err := LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, CouplingEnvConfig{
		FieldWeight:          0.7,
		ActionWeight:         0.3,
		FieldScale:           1.0,
		MinAgentsForCoupling: 2,
	}, cfg.Coupling)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, 4*1024*1024, cfg.Server.BodyLimit)
	assert.Equal(t, 30*time.Second, cfg.Client.ClientTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "entrain", cfg.Redis.KeyPrefix)
	assert.Empty(t, cfg.Publisher.PublishURL)
	assert.Equal(t, "dev", cfg.Round.Environment)
}

func TestLoadConfigWith_Overrides(t *testing.T) {
	cfg, err := LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"COUPLING_FIELD_WEIGHT": "0.5",
		"COUPLING_MIN_AGENTS":   "3",
		"REDIS_HOST":            "redis.local",
		"REDIS_PORT":            "6380",
		"ENVIRONMENT":           "prod",
		"ROUND_INTERVAL":        "90s",
	}))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Coupling.FieldWeight)
	assert.Equal(t, 3, cfg.Coupling.MinAgentsForCoupling)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis.local:6380", cfg.Redis.Address())
	assert.Equal(t, 90*time.Second, cfg.Round.Intervals().RoundInterval)
	assert.Equal(t, ProdIntervalConfig.RoundTimeout, cfg.Round.Intervals().RoundTimeout)
}

func TestLoadConfigWith_InvalidNumber(t *testing.T) {
	_, err := LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"COUPLING_FIELD_SCALE": "wide",
	}))
	assert.Error(t, err)
}

func TestCouplingEnvConfig_Options(t *testing.T) {
	env := CouplingEnvConfig{FieldWeight: 0.6, ActionWeight: 0.4, FieldScale: 2, MinAgentsForCoupling: 5}
	s := coupling.NewScorer(env.Options()...)
	assert.Equal(t, coupling.Config{
		FieldWeight:          0.6,
		ActionWeight:         0.4,
		FieldScale:           2,
		MinAgentsForCoupling: 5,
	}, s.Config())
}

func TestNewIntervalConfig(t *testing.T) {
	assert.Same(t, DevIntervalConfig, NewIntervalConfig("dev"))
	assert.Same(t, TestIntervalConfig, NewIntervalConfig("TEST"))
	assert.Same(t, ProdIntervalConfig, NewIntervalConfig("prod"))
	assert.Same(t, DevIntervalConfig, NewIntervalConfig("unknown"))

	// overriding must not mutate the shared presets
	_ = RoundEnvConfig{Environment: "dev", RoundInterval: time.Hour}.Intervals()
	assert.Equal(t, 5*time.Second, DevIntervalConfig.RoundInterval)
}
