package coupling

import "github.com/pkg/errors"

var (
	ErrEmptyAgentID     = errors.New("trace has an empty agent id")
	ErrDuplicateAgentID = errors.New("agent id appears more than once in batch")
)

// ValidateTraces is the strict counterpart of Score's lenient handling of ids.
// Score never calls it; callers that must reject empty or repeated agent ids
// run it first.
func ValidateTraces(traces []Trace) error {
	seen := make(map[string]int, len(traces))
	for i, tr := range traces {
		if tr.AgentID == "" {
			return errors.Wrapf(ErrEmptyAgentID, "trace %d", i)
		}
		if first, ok := seen[tr.AgentID]; ok {
			return errors.Wrapf(ErrDuplicateAgentID, "agent %q at traces %d and %d", tr.AgentID, first, i)
		}
		seen[tr.AgentID] = i
	}
	return nil
}
