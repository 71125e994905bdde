package coupling

// ExtractField returns the first non-NaN field reading in priority order, or
// DefaultFieldValue when none of the readings carries one.
func ExtractField(readings ...FieldReading) float64 {
	for _, r := range readings {
		if r == nil {
			continue
		}
		if v, ok := r.FieldValue(); ok {
			return v
		}
	}
	return DefaultFieldValue
}

// ExtractAmount returns the first non-NaN channel of the action among amount,
// delta and signal, or DefaultActionAmount.
func ExtractAmount(action ActionReading) float64 {
	if action == nil {
		return DefaultActionAmount
	}
	for _, read := range []func() (float64, bool){
		action.AmountValue,
		action.DeltaValue,
		action.SignalValue,
	} {
		if v, ok := read(); ok {
			return v
		}
	}
	return DefaultActionAmount
}

// features holds the per-agent inputs of the pairwise comparison.
type features struct {
	field  float64
	amount float64
}

func extractFeatures(tr Trace) features {
	return features{
		// most recent reading wins
		field:  ExtractField(tr.NextPercept, tr.PrevPercept),
		amount: ExtractAmount(tr.Action),
	}
}

// batch is the de-duplicated view of a trace slice: agent ids in order of
// first appearance, features taken from the last trace seen for each id.
type batch struct {
	ids      []string
	features []features
}

func newBatch(traces []Trace) batch {
	index := make(map[string]int, len(traces))
	b := batch{
		ids:      make([]string, 0, len(traces)),
		features: make([]features, 0, len(traces)),
	}
	for _, tr := range traces {
		f := extractFeatures(tr)
		if i, ok := index[tr.AgentID]; ok {
			b.features[i] = f
			continue
		}
		index[tr.AgentID] = len(b.ids)
		b.ids = append(b.ids, tr.AgentID)
		b.features = append(b.features, f)
	}
	return b
}

func (b batch) len() int {
	return len(b.ids)
}
