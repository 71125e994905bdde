package coupling

const (
	DefaultFieldWeight          = 0.7
	DefaultActionWeight         = 0.3
	DefaultFieldScale           = 1.0
	DefaultMinAgentsForCoupling = 2

	// MinFieldScale floors the field scale so a zero or negative scale
	// cannot invert the field similarity.
	MinFieldScale = 1e-6

	DefaultFieldValue   = 0.0
	DefaultActionAmount = 0.0

	ClampMin = 0.0
	ClampMax = 1.0

	fieldSimBase = 1.0

	actionSimBothNeutral   = 1.0
	actionSimOneNeutral    = 0.5
	actionSimSameDirection = 1.0
	actionSimOpposite      = 0.0
)

func DefaultConfig() Config {
	return Config{
		FieldWeight:          DefaultFieldWeight,
		ActionWeight:         DefaultActionWeight,
		FieldScale:           DefaultFieldScale,
		MinAgentsForCoupling: DefaultMinAgentsForCoupling,
	}
}
