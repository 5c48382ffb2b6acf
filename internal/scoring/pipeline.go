// Package scoring folds accumulated effects into final hand scores and
// applies the recorded side effects to game state once scoring completes.
package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cardsim/joker-engine-go/internal/effects"
)

// BaseScore is the hand's base chips and mult as produced by hand-rank
// classification, which lives outside this engine.
type BaseScore struct {
	Chips float64
	Mult  float64
}

// GameState is the slice of the game the pipeline mutates after a hand is
// scored. The game layer implements it.
type GameState interface {
	AddMoney(delta int)
	DestroyJoker(id string)
	TransformCard(t effects.CardTransform)
}

// Pipeline accumulates the session score. Scores compound fast enough that
// float64 loses integer precision within a long run, so the running total
// is decimal.
type Pipeline struct {
	total decimal.Decimal
}

// NewPipeline starts a pipeline at score zero.
func NewPipeline() *Pipeline {
	return &Pipeline{total: decimal.Zero}
}

// ScoreHand computes one hand's score:
//
//	final_chips = base_chips + effect chips
//	final_mult  = (base_mult + effect mult) * effect multiplier
//	score       = round(final_chips * final_mult), floored at 0
//
// and adds it to the running total. Non-finite inputs clamp before any
// arithmetic so an anomaly never reaches the total.
func (p *Pipeline) ScoreHand(base BaseScore, eff effects.AccumulatedEffect) decimal.Decimal {
	finalChips := clampFinite(base.Chips + eff.Chips)
	finalMult := clampFinite((base.Mult + eff.Mult) * eff.MultMult)

	score := clampFinite(finalChips * finalMult)
	if score < 0 {
		score = 0
	}

	hand := decimal.NewFromFloat(score).Round(0)
	p.total = p.total.Add(hand)
	return hand
}

// Total returns the running session score.
func (p *Pipeline) Total() decimal.Decimal {
	return p.total
}

// Apply pushes the effect's side effects into the game state. Call after
// ScoreHand, exactly once per scoring call.
func (p *Pipeline) Apply(eff effects.AccumulatedEffect, gs GameState) {
	if eff.MoneyDelta != 0 {
		gs.AddMoney(eff.MoneyDelta)
	}
	for _, id := range eff.Destroyed {
		gs.DestroyJoker(id)
	}
	for _, tr := range eff.Transforms {
		gs.TransformCard(tr)
	}
}

// clampFinite maps NaN to 0 and infinities to the float64 range, mirroring
// the accumulator's fold-time policy.
func clampFinite(v float64) float64 {
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
