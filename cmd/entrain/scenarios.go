package main

import "github.com/tensorplex-labs/entrain/internal/coupling"

type scenario struct {
	name   string
	traces []coupling.Trace
}

func agent(id string, prevField, nextField float64, action *coupling.Action) coupling.Trace {
	return coupling.Trace{
		AgentID:     id,
		PrevPercept: &coupling.Percept{Field: coupling.Num(prevField)},
		NextPercept: &coupling.Percept{Field: coupling.Num(nextField)},
		Action:      action,
	}
}

func move(amount float64) *coupling.Action {
	return &coupling.Action{Type: "move", Amount: coupling.Num(amount)}
}

func scenarios() []scenario {
	return []scenario{
		{
			name: "synchronized pair",
			traces: []coupling.Trace{
				agent("a1", 0.4, 0.5, move(1)),
				agent("a2", 0.4, 0.5, move(2)),
			},
		},
		{
			name: "desynchronized pair",
			traces: []coupling.Trace{
				agent("a1", 0.4, 0.0, move(1)),
				agent("a2", 9.0, 10.0, move(-1)),
			},
		},
		{
			name: "single agent",
			traces: []coupling.Trace{
				agent("solo", 0.2, 0.3, move(1)),
			},
		},
		{
			name: "clustered trio with outlier",
			traces: []coupling.Trace{
				agent("c1", 1.0, 1.0, move(1)),
				agent("c2", 1.1, 1.1, move(1)),
				agent("c3", 0.9, 0.9, &coupling.Action{Type: "nudge", Delta: coupling.Num(0.5)}),
				agent("out", 6.0, 6.0, &coupling.Action{Type: "signal", Signal: coupling.Num(-3)}),
			},
		},
		{
			name: "missing percepts",
			traces: []coupling.Trace{
				{AgentID: "m1"},
				{AgentID: "m2", PrevPercept: &coupling.Percept{Field: coupling.Num(0)}},
				{AgentID: "m3", Action: &coupling.Action{Type: "idle"}},
			},
		},
	}
}
