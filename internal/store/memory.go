package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/tensorplex-labs/entrain/internal/coupling"
)

// Memory is an in-process Store. It is used when no Redis is configured and
// in tests.
type Memory struct {
	mu       sync.RWMutex
	round    int64
	traces   map[int64][]coupling.Trace
	coupling map[int64]coupling.CouplingMap
}

func NewMemory() *Memory {
	return &Memory{
		traces:   make(map[int64][]coupling.Trace),
		coupling: make(map[int64]coupling.CouplingMap),
	}
}

func (m *Memory) Close() {}

func (m *Memory) CurrentRound(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.round, nil
}

func (m *Memory) AdvanceRound(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.round++
	return m.round, nil
}

func (m *Memory) AppendTraces(_ context.Context, round int64, batch []coupling.Trace) error {
	if len(batch) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces[round] = append(m.traces[round], batch...)
	return nil
}

func (m *Memory) AppendToCurrent(_ context.Context, batch []coupling.Trace) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(batch) > 0 {
		m.traces[m.round] = append(m.traces[m.round], batch...)
	}
	return m.round, nil
}

func (m *Memory) LoadTraces(_ context.Context, round int64) ([]coupling.Trace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.traces[round])
	if out == nil {
		out = []coupling.Trace{}
	}
	return out, nil
}

func (m *Memory) SaveCoupling(_ context.Context, round int64, scores coupling.CouplingMap) error {
	if len(scores) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coupling[round] == nil {
		m.coupling[round] = make(coupling.CouplingMap, len(scores))
	}
	maps.Copy(m.coupling[round], scores)
	return nil
}

func (m *Memory) LoadCoupling(_ context.Context, round int64) (coupling.CouplingMap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := maps.Clone(m.coupling[round])
	if out == nil {
		out = coupling.CouplingMap{}
	}
	return out, nil
}
