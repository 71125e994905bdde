// Package round closes trace rounds on a fixed interval, scores them and
// hands the results to the store and the publisher.
package round

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/entrain/internal/config"
	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/publish"
	"github.com/tensorplex-labs/entrain/internal/store"
)

// Runner owns the round ticker. A tick that fires while the previous round
// is still being scored is skipped.
type Runner struct {
	Scorer    *coupling.Scorer
	Store     store.Store
	Publisher publish.Publisher

	IntervalConfig *config.IntervalConfig

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup

	roundRunning atomic.Bool
}

func NewRunner(
	scorer *coupling.Scorer,
	st store.Store,
	pub publish.Publisher,
	intervals *config.IntervalConfig,
) *Runner {
	if pub == nil {
		pub = publish.Nop{}
	}
	if intervals == nil {
		intervals = config.DevIntervalConfig
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		Scorer:         scorer,
		Store:          st,
		Publisher:      pub,
		IntervalConfig: intervals,
		Ctx:            ctx,
		Cancel:         cancel,
	}
}

// runTicker calls fn every d until ctx is canceled. fn runs in its own
// goroutine so cancellation is not held up by a slow round.
func (r *Runner) runTicker(ctx context.Context, d time.Duration, fn func()) {
	defer r.Wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Wg.Add(1)
			go func() {
				defer r.Wg.Done()
				fn()
			}()
		}
	}
}

func (r *Runner) Start() {
	log.Info().
		Str("interval", r.IntervalConfig.RoundInterval.String()).
		Str("timeout", r.IntervalConfig.RoundTimeout.String()).
		Msg("round runner starting")

	r.Wg.Add(1)
	go r.runTicker(r.Ctx, r.IntervalConfig.RoundInterval, r.tick)
}

// Stop cancels the ticker and waits for an in-flight round to finish.
func (r *Runner) Stop() {
	if r.Cancel != nil {
		r.Cancel()
	}
	r.Wg.Wait()
}

func (r *Runner) tick() {
	if !r.roundRunning.CompareAndSwap(false, true) {
		log.Warn().Msg("previous round still running, skipping tick")
		return
	}
	defer r.roundRunning.Store(false)

	if _, err := r.RunOnce(r.Ctx); err != nil {
		log.Error().Err(err).Msg("round failed")
	}
}

// RunOnce closes the open round and scores its traces. The scores are saved
// before publishing, so a publish failure still leaves the round queryable.
// Rounds without traces are closed but neither saved nor published.
func (r *Runner) RunOnce(ctx context.Context) (publish.RoundResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.IntervalConfig.RoundTimeout)
	defer cancel()

	started := time.Now()

	next, err := r.Store.AdvanceRound(ctx)
	if err != nil {
		return publish.RoundResult{}, fmt.Errorf("advance round: %w", err)
	}
	closed := next - 1

	batch, err := r.Store.LoadTraces(ctx, closed)
	if err != nil {
		return publish.RoundResult{}, fmt.Errorf("load traces of round %d: %w", closed, err)
	}

	result := publish.RoundResult{
		ID:       uuid.New().String(),
		Round:    closed,
		ScoredAt: started.UTC(),
		Traces:   len(batch),
		Coupling: coupling.CouplingMap{},
	}
	if len(batch) == 0 {
		log.Debug().Int64("round", closed).Msg("round closed without traces")
		return result, nil
	}

	result.Coupling = r.Scorer.Score(batch)
	result.Summary = coupling.Summarize(result.Coupling)
	result.ElapsedMS = time.Now().Sub(started).Milliseconds()

	if err := r.Store.SaveCoupling(ctx, closed, result.Coupling); err != nil {
		return result, fmt.Errorf("save coupling of round %d: %w", closed, err)
	}

	log.Info().
		Str("id", result.ID).
		Int64("round", closed).
		Int("traces", result.Traces).
		Int("agents", result.Summary.Count).
		Float64("mean", result.Summary.Mean).
		Float64("min", result.Summary.Min).
		Float64("max", result.Summary.Max).
		Int64("elapsed_ms", result.ElapsedMS).
		Msg("round scored")

	if err := r.Publisher.Publish(ctx, result); err != nil {
		return result, fmt.Errorf("publish round %d: %w", closed, err)
	}
	return result, nil
}
