// Package service exposes the coupling scorer and the round store over the
// relay transport.
package service

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/store"
	"github.com/tensorplex-labs/entrain/pkg/relay"
)

type Service struct {
	scorer *coupling.Scorer
	store  store.Store
}

func New(scorer *coupling.Scorer, st store.Store) *Service {
	return &Service{scorer: scorer, store: st}
}

// Register installs the service routes on server.
func (s *Service) Register(server *relay.Server) {
	relay.ServeRoute(server, s.handleScore)
	relay.ServeRoute(server, s.handleSubmitTraces)
	relay.ServeRoute(server, s.handleCoupling)
}

func (s *Service) handleScore(_ *fiber.Ctx, req ScoreRequest) (ScoreResponse, error) {
	if req.Strict {
		if err := coupling.ValidateTraces(req.Traces); err != nil {
			return ScoreResponse{}, relay.BadRequest(err)
		}
	}

	scores := s.scorer.Score(req.Traces)
	summary := coupling.Summarize(scores)
	log.Debug().
		Int("traces", len(req.Traces)).
		Int("agents", summary.Count).
		Float64("mean", summary.Mean).
		Msg("scored batch")

	return ScoreResponse{Coupling: scores, Summary: summary}, nil
}

func (s *Service) handleSubmitTraces(c *fiber.Ctx, req SubmitTracesRequest) (SubmitTracesResponse, error) {
	round, err := s.store.AppendToCurrent(c.UserContext(), req.Traces)
	if err != nil {
		return SubmitTracesResponse{}, err
	}

	log.Debug().Int64("round", round).Int("traces", len(req.Traces)).Msg("accepted traces")
	return SubmitTracesResponse{Round: round, Accepted: len(req.Traces)}, nil
}

func (s *Service) handleCoupling(c *fiber.Ctx, req CouplingRequest) (CouplingResponse, error) {
	ctx := c.UserContext()

	var round int64
	if req.Round != nil {
		round = *req.Round
	} else {
		current, err := s.store.CurrentRound(ctx)
		if err != nil {
			return CouplingResponse{}, fmt.Errorf("read current round: %w", err)
		}
		if current == 0 {
			return CouplingResponse{}, relay.BadRequest(fmt.Errorf("no round has been closed yet"))
		}
		round = current - 1
	}
	if round < 0 {
		return CouplingResponse{}, relay.BadRequest(fmt.Errorf("invalid round %d", round))
	}

	scores, err := s.store.LoadCoupling(ctx, round)
	if err != nil {
		return CouplingResponse{}, err
	}
	return CouplingResponse{Round: round, Coupling: scores, Summary: coupling.Summarize(scores)}, nil
}
