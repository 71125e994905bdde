package main

import (
	"context"
	"flag"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/entrain/internal/config"
	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/service"
	"github.com/tensorplex-labs/entrain/internal/traces"
	"github.com/tensorplex-labs/entrain/internal/utils/logger"
	"github.com/tensorplex-labs/entrain/pkg/relay"
)

var (
	traceFile = flag.String("file", "", "score a JSON array of traces instead of the built-in scenarios")
	remote    = flag.Bool("remote", false, "score through the server at SCORING_SERVER_URL")
	plot      = flag.Bool("plot", true, "draw a bar chart of each result on stdout")
)

func main() {
	// parses the flags above as well
	logger.Init()

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	score := localScorer(cfg)
	if *remote {
		score = remoteScorer(cfg)
	}

	if *traceFile != "" {
		data, err := os.ReadFile(*traceFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", *traceFile).Msg("failed to read trace file")
		}
		batch, err := traces.Decode(data)
		if err != nil {
			log.Fatal().Err(err).Str("file", *traceFile).Msg("failed to decode trace file")
		}
		run(*traceFile, batch, score)
		return
	}

	for _, s := range scenarios() {
		run(s.name, s.traces, score)
	}
}

type scoreFunc func([]coupling.Trace) (coupling.CouplingMap, error)

func localScorer(cfg *config.AppConfig) scoreFunc {
	scorer := coupling.NewScorer(cfg.Coupling.Options()...)
	return func(batch []coupling.Trace) (coupling.CouplingMap, error) {
		return scorer.Score(batch), nil
	}
}

func remoteScorer(cfg *config.AppConfig) scoreFunc {
	client := relay.NewClient(&relay.ClientConfig{
		Timeout:         cfg.Client.ClientTimeout,
		ZstdCompression: true,
	})
	log.Info().Str("url", cfg.Client.ServerURL).Msg("scoring through remote server")

	return func(batch []coupling.Trace) (coupling.CouplingMap, error) {
		resp, err := relay.Send[service.ScoreRequest, service.ScoreResponse](
			context.Background(), client, cfg.Client.ServerURL, service.ScoreRequest{Traces: batch},
		)
		if err != nil {
			return nil, err
		}
		return resp.Coupling, nil
	}
}

func run(name string, batch []coupling.Trace, score scoreFunc) {
	log.Info().Msgf("--- %s ---", name)

	scores, err := score(batch)
	if err != nil {
		log.Error().Err(err).Str("scenario", name).Msg("scoring failed")
		return
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		log.Info().Str("agent", id).Float64("coupling", scores[id]).Msgf("agent %s coupled %f", id, scores[id])
	}

	summary := coupling.Summarize(scores)
	log.Info().
		Int("agents", summary.Count).
		Float64("mean", summary.Mean).
		Float64("stddev", summary.StdDev).
		Msg("summary")

	if *plot {
		coupling.PlotCouplingTerminal(os.Stdout, scores, name)
	}
}
