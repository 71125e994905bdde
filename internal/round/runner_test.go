package round

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/entrain/internal/config"
	"github.com/tensorplex-labs/entrain/internal/coupling"
	"github.com/tensorplex-labs/entrain/internal/publish"
	"github.com/tensorplex-labs/entrain/internal/store"
)

type recordingPublisher struct {
	mu      sync.Mutex
	results []publish.RoundResult
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, result publish.RoundResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.results)
}

func trace(id string, field, amount float64) coupling.Trace {
	return coupling.Trace{
		AgentID:     id,
		NextPercept: &coupling.Percept{Field: coupling.Num(field)},
		Action:      &coupling.Action{Amount: coupling.Num(amount)},
	}
}

func newTestRunner(pub publish.Publisher) (*Runner, *store.Memory) {
	st := store.NewMemory()
	intervals := &config.IntervalConfig{RoundInterval: 10 * time.Millisecond, RoundTimeout: time.Second}
	return NewRunner(coupling.NewScorer(), st, pub, intervals), st
}

func TestRunOnceScoresClosedRound(t *testing.T) {
	pub := &recordingPublisher{}
	r, st := newTestRunner(pub)
	ctx := context.Background()

	batch := []coupling.Trace{trace("a", 0.5, 1), trace("b", 0.5, 2), trace("c", 3, -1)}
	require.NoError(t, st.AppendTraces(ctx, 0, batch))

	result, err := r.RunOnce(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, int64(0), result.Round)
	assert.Equal(t, 3, result.Traces)
	assert.Equal(t, coupling.NewScorer().Score(batch), result.Coupling)
	assert.Equal(t, 3, result.Summary.Count)

	current, err := st.CurrentRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)

	saved, err := st.LoadCoupling(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, result.Coupling, saved)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, result, pub.results[0])
}

func TestRunOnceEmptyRound(t *testing.T) {
	pub := &recordingPublisher{}
	r, st := newTestRunner(pub)

	result, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Coupling)
	assert.Zero(t, pub.count())

	current, _ := st.CurrentRound(context.Background())
	assert.Equal(t, int64(1), current)
}

func TestRunOnceTracesLandInOpenRoundOnly(t *testing.T) {
	r, st := newTestRunner(nil)
	ctx := context.Background()

	require.NoError(t, st.AppendTraces(ctx, 0, []coupling.Trace{trace("a", 0, 0), trace("b", 0, 0)}))
	_, err := r.RunOnce(ctx)
	require.NoError(t, err)

	require.NoError(t, st.AppendTraces(ctx, 1, []coupling.Trace{trace("z", 0, 0)}))
	result, err := r.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Round)
	assert.Equal(t, coupling.CouplingMap{"z": 0}, result.Coupling)
}

func TestRunOncePublishFailureKeepsScores(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("sink down")}
	r, st := newTestRunner(pub)
	ctx := context.Background()

	require.NoError(t, st.AppendTraces(ctx, 0, []coupling.Trace{trace("a", 1, 1), trace("b", 1, 1)}))

	_, err := r.RunOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")

	saved, err := st.LoadCoupling(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestStartStop(t *testing.T) {
	pub := &recordingPublisher{}
	r, st := newTestRunner(pub)
	require.NoError(t, st.AppendTraces(context.Background(), 0, []coupling.Trace{trace("a", 0, 1), trace("b", 0, 1)}))

	r.Start()
	assert.Eventually(t, func() bool { return pub.count() >= 1 }, 2*time.Second, 5*time.Millisecond)
	r.Stop()

	current, err := st.CurrentRound(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, current, int64(1))
	assert.False(t, r.roundRunning.Load())
}

func TestTickSkipsWhileRunning(t *testing.T) {
	r, st := newTestRunner(nil)
	r.roundRunning.Store(true)

	r.tick()

	current, err := st.CurrentRound(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)
}
