package service

import (
	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/traces"
)

// ScoreRequest scores a batch directly, without touching the round store.
type ScoreRequest struct {
	Traces traces.Batch `json:"traces"`
	// Strict rejects batches with empty or repeated agent ids.
	Strict bool `json:"strict,omitempty"`
}

type ScoreResponse struct {
	Coupling coupling.CouplingMap `json:"coupling"`
	Summary  coupling.Summary     `json:"summary"`
}

// SubmitTracesRequest appends traces to the round that is currently open.
type SubmitTracesRequest struct {
	Traces traces.Batch `json:"traces"`
}

type SubmitTracesResponse struct {
	Round    int64 `json:"round"`
	Accepted int   `json:"accepted"`
}

// CouplingRequest fetches the stored scores of a round. A nil Round means the
// most recently closed round.
type CouplingRequest struct {
	Round *int64 `json:"round,omitempty"`
}

type CouplingResponse struct {
	Round    int64                `json:"round"`
	Coupling coupling.CouplingMap `json:"coupling"`
	Summary  coupling.Summary     `json:"summary"`
}
