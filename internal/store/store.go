// Package store keeps per-round trace batches and coupling results.
package store

import (
	"context"
	"fmt"

	"github.com/tensorplex-labs/entrain/internal/coupling"
)

// Store is the round-keyed persistence used by the scoring service and the
// round runner. Rounds start at 0 and only move forward.
type Store interface {
	// CurrentRound returns the round that is accepting traces.
	CurrentRound(ctx context.Context) (int64, error)
	// AdvanceRound closes the current round and returns the new current round.
	AdvanceRound(ctx context.Context) (int64, error)
	AppendTraces(ctx context.Context, round int64, traces []coupling.Trace) error
	// AppendToCurrent appends to the open round and returns it, atomically
	// with respect to AdvanceRound.
	AppendToCurrent(ctx context.Context, traces []coupling.Trace) (int64, error)
	LoadTraces(ctx context.Context, round int64) ([]coupling.Trace, error)
	SaveCoupling(ctx context.Context, round int64, scores coupling.CouplingMap) error
	// LoadCoupling returns an empty map for a round that was never scored.
	LoadCoupling(ctx context.Context, round int64) (coupling.CouplingMap, error)
	Close()
}

// Keys builds the key names for one prefix.
type Keys struct {
	Prefix string
}

func (k Keys) Round() string {
	return k.Prefix + ":round"
}

func (k Keys) Traces(round int64) string {
	return fmt.Sprintf("%s:traces:%d", k.Prefix, round)
}

func (k Keys) Coupling(round int64) string {
	return fmt.Sprintf("%s:coupling:%d", k.Prefix, round)
}
