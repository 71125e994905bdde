package coupling

import "math"

// FieldSimilarity maps the absolute difference of two field readings into
// (0,1]. It is 1 only for identical readings and decays as the difference
// grows; scale is floored at MinFieldScale.
func FieldSimilarity(f1, f2, scale float64) float64 {
	diff := math.Abs(f1 - f2)
	effectiveScale := math.Max(scale, MinFieldScale)
	return fieldSimBase / (fieldSimBase + diff*effectiveScale)
}

// ActionSimilarity compares the direction of two action amounts, ignoring
// magnitude. Two neutral actions agree fully, one neutral action half agrees.
func ActionSimilarity(a1, a2 float64) float64 {
	s1, s2 := sign(a1), sign(a2)
	switch {
	case s1 == 0 && s2 == 0:
		return actionSimBothNeutral
	case s1 == 0 || s2 == 0:
		return actionSimOneNeutral
	case s1 == s2:
		return actionSimSameDirection
	default:
		return actionSimOpposite
	}
}

// Combine weights the two channel similarities and clamps the result to [0,1].
func (c Config) Combine(fieldSim, actionSim float64) float64 {
	return clamp01(c.FieldWeight*fieldSim + c.ActionWeight*actionSim)
}

// pairSimilarity is the combined similarity of two agents.
func (c Config) pairSimilarity(a, b features) float64 {
	return c.Combine(
		FieldSimilarity(a.field, b.field, c.FieldScale),
		ActionSimilarity(a.amount, b.amount),
	)
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// clamp01 also maps NaN to ClampMin so that degenerate weights or scales
// cannot leak NaN into a score.
func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < ClampMin:
		return ClampMin
	case x > ClampMax:
		return ClampMax
	}
	return x
}
