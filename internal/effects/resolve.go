package effects

// Strategy selects how competing contributions to one effect field combine.
// Multiplier fields ignore the strategy and always combine by product.
type Strategy string

const (
	StrategySum       Strategy = "sum"
	StrategyMax       Strategy = "max"
	StrategyMin       Strategy = "min"
	StrategyFirstWins Strategy = "first"
	StrategyLastWins  Strategy = "last"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySum, StrategyMax, StrategyMin, StrategyFirstWins, StrategyLastWins:
		return true
	}
	return false
}

// FieldStrategies configures the per-field conflict resolution policy.
// The zero value is not usable; call DefaultStrategies.
type FieldStrategies struct {
	Chips Strategy
	Mult  Strategy
	Money Strategy
}

// DefaultStrategies returns the default policy: every additive field sums.
func DefaultStrategies() FieldStrategies {
	return FieldStrategies{
		Chips: StrategySum,
		Mult:  StrategySum,
		Money: StrategySum,
	}
}

// Resolve combines values produced in evaluation order under the given
// strategy. It is a pure function: same inputs, same output. Max and Min
// keep the first occurrence on ties, so Sum, Max and Min are insensitive
// to reordering of equal-priority contributors; FirstWins and LastWins are
// order-sensitive by design.
func Resolve(values []float64, s Strategy) float64 {
	if len(values) == 0 {
		return 0
	}
	switch s {
	case StrategyMax:
		best := values[0]
		for _, v := range values[1:] {
			if v > best {
				best = v
			}
		}
		return best
	case StrategyMin:
		best := values[0]
		for _, v := range values[1:] {
			if v < best {
				best = v
			}
		}
		return best
	case StrategyFirstWins:
		return values[0]
	case StrategyLastWins:
		return values[len(values)-1]
	default: // StrategySum
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	}
}

// folder folds one field incrementally with semantics identical to Resolve
// over the full value list. The processor uses it to avoid building slices
// on the hot path.
type folder struct {
	strategy Strategy
	value    float64
	n        int
}

func (f *folder) add(v float64) {
	switch f.strategy {
	case StrategyMax:
		if f.n == 0 || v > f.value {
			f.value = v
		}
	case StrategyMin:
		if f.n == 0 || v < f.value {
			f.value = v
		}
	case StrategyFirstWins:
		if f.n == 0 {
			f.value = v
		}
	case StrategyLastWins:
		f.value = v
	default:
		f.value += v
	}
	f.n++
}
