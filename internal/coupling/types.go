package coupling

import "math"

// CouplingMap maps an agent id to its coupling score in [0,1].
type CouplingMap map[string]float64

// FieldReading is anything that may carry a numeric field reading.
type FieldReading interface {
	FieldValue() (float64, bool)
}

// ActionReading exposes the optional numeric channels of an action, in the
// order they are consulted: amount, delta, signal.
type ActionReading interface {
	AmountValue() (float64, bool)
	DeltaValue() (float64, bool)
	SignalValue() (float64, bool)
}

// Percept is a single environmental reading seen by an agent.
type Percept struct {
	Field *float64 `json:"field,omitempty"`
}

// FieldValue reports the field reading when it is present and not NaN.
func (p *Percept) FieldValue() (float64, bool) {
	if p == nil {
		return 0, false
	}
	return numeric(p.Field)
}

// Action is the action an agent chose during a round. Type is a free-form
// label ("nudge", "emit", ...) and does not take part in scoring.
type Action struct {
	Type   string   `json:"type,omitempty"`
	Amount *float64 `json:"amount,omitempty"`
	Delta  *float64 `json:"delta,omitempty"`
	Signal *float64 `json:"signal,omitempty"`
}

func (a *Action) AmountValue() (float64, bool) {
	if a == nil {
		return 0, false
	}
	return numeric(a.Amount)
}

func (a *Action) DeltaValue() (float64, bool) {
	if a == nil {
		return 0, false
	}
	return numeric(a.Delta)
}

func (a *Action) SignalValue() (float64, bool) {
	if a == nil {
		return 0, false
	}
	return numeric(a.Signal)
}

// Trace is one agent's observation for a scoring round.
type Trace struct {
	AgentID     string   `json:"agentId"`
	PrevPercept *Percept `json:"prevPercept,omitempty"`
	NextPercept *Percept `json:"nextPercept,omitempty"`
	Action      *Action  `json:"action,omitempty"`
}

// Num returns a pointer to v, for building percepts and actions inline.
func Num(v float64) *float64 {
	return &v
}

// numeric treats NaN like a missing value. ±Inf is a reading; an Inf-Inf
// comparison degrades to NaN, which clamp01 maps to 0.
func numeric(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}
