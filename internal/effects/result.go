package effects

import "math"

// ProcessResult is the outcome of a single joker invocation. Pure data;
// the zero value is a no-op except for MultMult, which callers should set
// to 1 (the processor treats 0 as 1 defensively).
type ProcessResult struct {
	Chips       float64 `json:"chips"`
	Mult        float64 `json:"mult"`
	MultMult    float64 `json:"mult_mult"`
	MoneyDelta  int     `json:"money_delta"`
	Retrigger   bool    `json:"retrigger,omitempty"`
	DestroySelf bool    `json:"destroy_self,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// NoopResult is the result substituted when a joker does not trigger or
// misbehaves.
func NoopResult() ProcessResult {
	return ProcessResult{MultMult: 1}
}

// CardTransform requests that the card at Index in the played hand be
// replaced. Applied by the scoring pipeline after the call returns.
type CardTransform struct {
	Index int    `json:"index"`
	To    uint8  `json:"to"` // card code, see cards.Card.Code
	By    string `json:"by"` // joker id that requested the change
}

// AccumulatedEffect is the fold of every ProcessResult produced during one
// scoring call. Consumers must treat it as read-only: the same value may be
// served again from the effect cache.
type AccumulatedEffect struct {
	Chips      float64         `json:"chips"`
	Mult       float64         `json:"mult"`
	MultMult   float64         `json:"mult_mult"`
	MoneyDelta int             `json:"money_delta"`
	Destroyed  []string        `json:"destroyed,omitempty"`
	Transforms []CardTransform `json:"transforms,omitempty"`
	Messages   []string        `json:"messages,omitempty"`
}

// sanitize clamps numeric anomalies produced by effect accumulation.
// NaN additive fields reset to 0, a NaN multiplier resets to 1, and
// infinities clamp to the float64 range. Negative multipliers floor at 0.
func (a *AccumulatedEffect) sanitize() {
	a.Chips = clampAdditive(a.Chips)
	a.Mult = clampAdditive(a.Mult)
	switch {
	case math.IsNaN(a.MultMult):
		a.MultMult = 1
	case math.IsInf(a.MultMult, 1):
		a.MultMult = math.MaxFloat64
	case a.MultMult < 0 || math.IsInf(a.MultMult, -1):
		a.MultMult = 0
	}
}

func clampAdditive(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}
