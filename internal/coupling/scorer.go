// Package coupling scores how synchronized each agent in a batch is with its
// peers. Every agent is compared with every other agent on two channels, the
// field it perceived and the direction of the action it took, and its coupling
// is the mean of those pairwise similarities.
package coupling

import (
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/entrain/internal/utils/logger"
)

// Config is the fixed parameter set of a Scorer. The weights are not required
// to sum to 1.
type Config struct {
	FieldWeight          float64 `json:"fieldWeight"`
	ActionWeight         float64 `json:"actionWeight"`
	FieldScale           float64 `json:"fieldScale"`
	MinAgentsForCoupling int     `json:"minAgentsForCoupling"`
}

// Scorer computes coupling scores. It is read-only after construction and
// safe for concurrent use.
type Scorer struct {
	config Config
}

type Option func(*Config)

func WithFieldWeight(weight float64) Option {
	return func(c *Config) {
		c.FieldWeight = weight
	}
}

func WithActionWeight(weight float64) Option {
	return func(c *Config) {
		c.ActionWeight = weight
	}
}

func WithFieldScale(scale float64) Option {
	return func(c *Config) {
		c.FieldScale = scale
	}
}

func WithMinAgentsForCoupling(n int) Option {
	return func(c *Config) {
		c.MinAgentsForCoupling = n
	}
}

func WithConfig(config Config) Option {
	return func(c *Config) {
		*c = config
	}
}

// NewScorer builds a Scorer from DefaultConfig with opts applied on top.
func NewScorer(opts ...Option) *Scorer {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	logger.Sugar().Infow("Coupling scorer configured", "config", config)
	return &Scorer{config: config}
}

func (s *Scorer) Config() Config {
	return s.config
}

// Score returns one coupling value per distinct agent id in traces.
//
// An empty batch gives an empty map. A batch with fewer distinct agents than
// MinAgentsForCoupling gives 0 for every agent. When an id appears more than
// once the last trace for it is used.
func (s *Scorer) Score(traces []Trace) CouplingMap {
	startTime := time.Now()
	coupling := make(CouplingMap)
	if len(traces) == 0 {
		return coupling
	}

	b := newBatch(traces)
	n := b.len()
	if n < s.config.MinAgentsForCoupling {
		for _, id := range b.ids {
			coupling[id] = ClampMin
		}
		log.Debug().
			Int("agents", n).
			Int("min_agents", s.config.MinAgentsForCoupling).
			Msg("Not enough agents for coupling, scoring all as zero")
		return coupling
	}

	sims := s.pairMatrix(b)

	peers := make([]float64, 0, n-1)
	for i, id := range b.ids {
		peers = peers[:0]
		for j := range n {
			if j != i {
				peers = append(peers, sims.At(i, j))
			}
		}

		mean := ClampMin
		if len(peers) > 0 {
			mean = floats.Sum(peers) / float64(len(peers))
		}
		coupling[id] = clamp01(mean)
		log.Trace().Str("agent", id).Float64("coupling", coupling[id]).Msg("Scored agent")
	}

	log.Debug().
		Int("traces", len(traces)).
		Int("agents", n).
		Dur("elapsed", time.Since(startTime)).
		Msg("Calculated coupling scores")
	return coupling
}

// PairMatrix returns the agent ids in first-appearance order together with
// the symmetric matrix of combined pair similarities; entry (i, j) compares
// ids[i] and ids[j]. The diagonal is left at zero. Unlike Score it ignores
// MinAgentsForCoupling. An empty batch returns nil, nil.
func (s *Scorer) PairMatrix(traces []Trace) ([]string, *mat.SymDense) {
	b := newBatch(traces)
	if b.len() == 0 {
		return nil, nil
	}
	return b.ids, s.pairMatrix(b)
}

func (s *Scorer) pairMatrix(b batch) *mat.SymDense {
	n := b.len()
	sims := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i + 1; j < n; j++ {
			sims.SetSym(i, j, s.config.pairSimilarity(b.features[i], b.features[j]))
		}
	}
	return sims
}
