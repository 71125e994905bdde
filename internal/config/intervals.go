package config

import (
	"strings"
	"time"
)

type IntervalConfig struct {
	RoundInterval time.Duration
	// RoundTimeout bounds the store and publish calls of one round.
	RoundTimeout time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		RoundInterval: 5 * time.Second,
		RoundTimeout:  5 * time.Second,
	}
	TestIntervalConfig = &IntervalConfig{
		RoundInterval: 30 * time.Second,
		RoundTimeout:  15 * time.Second,
	}
	ProdIntervalConfig = &IntervalConfig{
		RoundInterval: 1 * time.Minute,
		RoundTimeout:  30 * time.Second,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}
