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
	"github.com/tensorplex-labs/entrain/internal/service"
	"github.com/tensorplex-labs/entrain/internal/store"
	"github.com/tensorplex-labs/entrain/internal/utils/logger"
	"github.com/tensorplex-labs/entrain/pkg/relay"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting entrain server...")

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	scorer := coupling.NewScorer(cfg.Coupling.Options()...)

	var st store.Store
	var runner *round.Runner
	if cfg.Redis.Enabled() {
		r, err := store.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis store")
		}
		st = r
		log.Info().Msg("rounds are closed by entrain-worker")
	} else {
		// without a shared store nobody else can see the rounds, so close
		// them in-process
		st = store.NewMemory()
		pub, err := publish.New(&cfg.Publisher)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init publisher")
		}
		runner = round.NewRunner(scorer, st, pub, cfg.Round.Intervals())
		log.Warn().Msg("REDIS_HOST not set, using in-memory store with embedded round runner")
	}
	defer st.Close()

	server := relay.NewServer(&relay.ServerConfig{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		BodyLimit: cfg.Server.BodyLimit,
	})
	service.New(scorer, st).Register(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping server")
		if runner != nil {
			runner.Stop()
		}
		if err := server.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	if runner != nil {
		runner.Start()
	}

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}
