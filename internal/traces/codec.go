// Package traces decodes and encodes agent traces on the wire. Decoding is
// lenient: optional fields of the wrong type are dropped, not rejected, so a
// partly malformed trace still scores with defaults.
package traces

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"

	"github.com/tensorplex-labs/entrain/internal/coupling"
)

const (
	keyAgentID     = "agentId"
	keyPrevPercept = "prevPercept"
	keyNextPercept = "nextPercept"
	keyAction      = "action"
	keyField       = "field"
	keyType        = "type"
	keyAmount      = "amount"
	keyDelta       = "delta"
	keySignal      = "signal"
)

// Batch is a slice of traces that unmarshals leniently, for embedding in
// request bodies.
type Batch []coupling.Trace

func (b *Batch) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// Decode parses a JSON array of traces. A document that is valid JSON but not
// an array decodes to an empty batch, and array elements that are not
// objects are skipped. Only syntactically invalid JSON is an error.
func Decode(data []byte) ([]coupling.Trace, error) {
	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode traces: %w", err)
	}

	items, ok := doc.([]any)
	if !ok {
		return []coupling.Trace{}, nil
	}

	out := make([]coupling.Trace, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, fromObject(obj))
		}
	}
	return out, nil
}

// DecodeOne parses a single JSON trace object. ok is false when the document
// is valid JSON but not an object.
func DecodeOne(data []byte) (tr coupling.Trace, ok bool, err error) {
	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return coupling.Trace{}, false, fmt.Errorf("decode trace: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return coupling.Trace{}, false, nil
	}
	return fromObject(obj), true, nil
}

func Encode(traces []coupling.Trace) ([]byte, error) {
	if traces == nil {
		traces = []coupling.Trace{}
	}
	data, err := sonic.Marshal(traces)
	if err != nil {
		return nil, fmt.Errorf("encode traces: %w", err)
	}
	return data, nil
}

func EncodeOne(tr coupling.Trace) ([]byte, error) {
	data, err := sonic.Marshal(tr)
	if err != nil {
		return nil, fmt.Errorf("encode trace %q: %w", tr.AgentID, err)
	}
	return data, nil
}

func fromObject(obj map[string]any) coupling.Trace {
	tr := coupling.Trace{
		AgentID:     agentID(obj[keyAgentID]),
		PrevPercept: percept(obj[keyPrevPercept]),
		NextPercept: percept(obj[keyNextPercept]),
	}
	if rec, ok := obj[keyAction].(map[string]any); ok {
		label, _ := rec[keyType].(string)
		tr.Action = &coupling.Action{
			Type:   label,
			Amount: number(rec[keyAmount]),
			Delta:  number(rec[keyDelta]),
			Signal: number(rec[keySignal]),
		}
	}
	return tr
}

func percept(v any) *coupling.Percept {
	rec, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return &coupling.Percept{Field: number(rec[keyField])}
}

// agentID accepts string ids and integral numeric ids.
func agentID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprint(id)
	}
	return ""
}

func number(v any) *float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return nil
	}
	return &f
}
