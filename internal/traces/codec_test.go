package traces

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/entrain/internal/coupling"
)

const syncBatch = `[
	{"agentId": "a", "prevPercept": {"field": 1}, "nextPercept": {"field": 1.2}, "action": {"type": "nudge", "amount": 1}},
	{"agentId": "b", "prevPercept": {"field": 1.1}, "nextPercept": {"field": 1.3}, "action": {"type": "nudge", "amount": 0.8}}
]`

func TestDecode_WellFormed(t *testing.T) {
	got, err := Decode([]byte(syncBatch))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].AgentID)
	assert.Equal(t, 1.0, *got[0].PrevPercept.Field)
	assert.Equal(t, 1.2, *got[0].NextPercept.Field)
	assert.Equal(t, "nudge", got[0].Action.Type)
	assert.Equal(t, 1.0, *got[0].Action.Amount)
	assert.Nil(t, got[0].Action.Delta)

	scores := coupling.NewScorer().Score(got)
	assert.Greater(t, scores["a"], 0.7)
	assert.Greater(t, scores["b"], 0.7)
}

func TestDecode_MalformedFieldsDegrade(t *testing.T) {
	got, err := Decode([]byte(`[
		{"agentId": "x", "nextPercept": {"field": "high"}, "prevPercept": {"field": 2}, "action": {"amount": "lots", "delta": null, "signal": -1}},
		{"agentId": "y", "nextPercept": 5, "action": "jump"},
		42,
		"noise",
		{"agentId": 7}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 3)

	x := got[0]
	assert.Nil(t, x.NextPercept.Field)
	assert.Equal(t, 2.0, coupling.ExtractField(x.NextPercept, x.PrevPercept))
	assert.Equal(t, -1.0, coupling.ExtractAmount(x.Action))

	y := got[1]
	assert.Nil(t, y.NextPercept)
	assert.Nil(t, y.Action)

	assert.Equal(t, "7", got[2].AgentID)
}

func TestDecode_NonArrayIsEmpty(t *testing.T) {
	for _, doc := range []string{`{"agentId": "a"}`, `null`, `"traces"`, `3`} {
		got, err := Decode([]byte(doc))
		require.NoError(t, err, doc)
		assert.Empty(t, got, doc)
		assert.Empty(t, coupling.NewScorer().Score(got), doc)
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`[{"agentId": `))
	assert.Error(t, err)
}

func TestDecodeOne(t *testing.T) {
	tr, ok, err := DecodeOne([]byte(`{"agentId": "solo", "action": {"delta": 0.5}}`))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "solo", tr.AgentID)
	assert.Equal(t, 0.5, coupling.ExtractAmount(tr.Action))

	_, ok, err = DecodeOne([]byte(`[1, 2]`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncodeDecodePreservesScores(t *testing.T) {
	in, err := Decode([]byte(syncBatch))
	require.NoError(t, err)

	data, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(data)
	require.NoError(t, err)

	s := coupling.NewScorer()
	assert.Equal(t, s.Score(in), s.Score(out))
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestBatch_UnmarshalJSON(t *testing.T) {
	var req struct {
		Round  int64 `json:"round"`
		Traces Batch `json:"traces"`
	}
	err := sonic.Unmarshal([]byte(`{"round": 3, "traces": [{"agentId": "a", "action": {"signal": "x"}}]}`), &req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), req.Round)
	require.Len(t, req.Traces, 1)
	assert.Equal(t, coupling.DefaultActionAmount, coupling.ExtractAmount(req.Traces[0].Action))
}
