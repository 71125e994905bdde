package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/entrain/internal/config"
	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/publish"
	"github.com/tensorplex-labs/entrain/internal/round"
	"github.com/tensorplex-labs/entrain/internal/store"
	"github.com/tensorplex-labs/entrain/internal/utils/logger"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting entrain round worker...")

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}
	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_HOST must be set, the worker reads rounds from the shared store")
	}

	st, err := store.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init redis store")
	}
	defer st.Close()

	pub, err := publish.New(&cfg.Publisher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init publisher")
	}

	r := round.NewRunner(coupling.NewScorer(cfg.Coupling.Options()...), st, pub, cfg.Round.Intervals())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	r.Start()

	<-sigChan
	log.Info().Msg("shutdown signal received, stopping round worker")
	r.Stop()
	log.Info().Msg("round worker stopped")
}
