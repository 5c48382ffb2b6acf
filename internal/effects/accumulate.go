package effects

// Accumulator folds ProcessResults into one AccumulatedEffect using the
// configured per-field strategies. Multiplier contributions always combine
// by product regardless of strategy: they are compounding factors, not
// competing claims.
type Accumulator struct {
	chips    folder
	mult     folder
	money    folder
	multMult float64

	destroyed  []string
	transforms []CardTransform
	messages   []string
}

// NewAccumulator creates an accumulator for one scoring call.
func NewAccumulator(fs FieldStrategies) Accumulator {
	return Accumulator{
		chips:    folder{strategy: fs.Chips},
		mult:     folder{strategy: fs.Mult},
		money:    folder{strategy: fs.Money},
		multMult: 1,
	}
}

// Fold merges one joker invocation's result. jokerID attributes destroy
// requests; results from untriggered jokers must not be folded.
func (a *Accumulator) Fold(res ProcessResult, jokerID string) {
	a.chips.add(res.Chips)
	a.mult.add(res.Mult)
	a.money.add(float64(res.MoneyDelta))
	if res.MultMult != 0 {
		a.multMult *= res.MultMult
	}
	if res.DestroySelf {
		a.destroyed = append(a.destroyed, jokerID)
	}
	if res.Message != "" {
		a.messages = append(a.messages, res.Message)
	}
}

// Drain collects the scratch outputs jokers wrote directly onto the
// context.
func (a *Accumulator) Drain(ctx *ProcessContext) {
	if ctx.MoneyDelta != 0 {
		a.money.add(float64(ctx.MoneyDelta))
	}
	a.destroyed = append(a.destroyed, ctx.Destroyed...)
	a.transforms = append(a.transforms, ctx.Transforms...)
	a.messages = append(a.messages, ctx.Messages...)
}

// Result finalizes the fold, clamping numeric anomalies. The slices are
// clipped to their length so a caller appending to the result can never
// write through into the accumulator's backing arrays, which matters once
// results are cached and served to multiple callers.
func (a *Accumulator) Result() AccumulatedEffect {
	eff := AccumulatedEffect{
		Chips:      a.chips.value,
		Mult:       a.mult.value,
		MultMult:   a.multMult,
		MoneyDelta: int(a.money.value),
		Destroyed:  a.destroyed[:len(a.destroyed):len(a.destroyed)],
		Transforms: a.transforms[:len(a.transforms):len(a.transforms)],
		Messages:   a.messages[:len(a.messages):len(a.messages)],
	}
	eff.sanitize()
	return eff
}
