package joker

import (
	"fmt"

	"github.com/cardsim/joker-engine-go/internal/cards"
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/state"
)

// RegisterBuiltins adds every built-in joker kind to r. Call once during
// startup wiring, before Freeze.
func RegisterBuiltins(r *Registry) {
	r.Register(Meta{Kind: "jolly", Name: "Jolly Roger", Rarity: RarityCommon, Cost: 3},
		func(m Meta) Joker { return &jollyJoker{Base{M: m}} })
	r.Register(Meta{Kind: "greedy", Name: "Diamond Hound", Rarity: RarityCommon, Cost: 5},
		func(m Meta) Joker { return &greedyJoker{Base{M: m}} })
	r.Register(Meta{Kind: "half", Name: "Half Measure", Rarity: RarityCommon, Cost: 4},
		func(m Meta) Joker { return &halfJoker{Base{M: m}} })
	r.Register(Meta{Kind: "opener", Name: "Opening Act", Rarity: RarityCommon, Cost: 4},
		func(m Meta) Joker { return &openerJoker{Base{M: m}} })
	r.Register(Meta{Kind: "stacker", Name: "Slow Burn", Rarity: RarityUncommon, Cost: 6},
		func(m Meta) Joker { return &stackerJoker{Base{M: m}} })
	r.Register(Meta{Kind: "midas", Name: "Gilded Touch", Rarity: RarityUncommon, Cost: 6},
		func(m Meta) Joker { return &midasJoker{Base{M: m}} })
	r.Register(Meta{Kind: "echo", Name: "Echo Chamber", Rarity: RarityRare, Cost: 7},
		func(m Meta) Joker { return &echoJoker{Base{M: m}} })
	r.Register(Meta{Kind: "glass", Name: "Glass Cannon", Rarity: RarityRare, Cost: 7},
		func(m Meta) Joker { return &glassJoker{Base{M: m}} })
	r.Register(Meta{Kind: "transmute", Name: "Transmuter", Rarity: RarityRare, Cost: 8},
		func(m Meta) Joker { return &transmuteJoker{Base{M: m}} })
}

// jollyJoker: +4 Mult whenever a hand is played. The simplest possible
// gameplay joker.
type jollyJoker struct{ Base }

func (j *jollyJoker) Capabilities() Capabilities { return Capabilities{Gameplay: true} }

func (j *jollyJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageHandPlayed
}

func (j *jollyJoker) Process(*effects.ProcessContext, OwnState) effects.ProcessResult {
	return effects.ProcessResult{Mult: 4, MultMult: 1}
}

// greedyJoker: +3 Mult for each Diamond as it scores.
type greedyJoker struct{ Base }

func (j *greedyJoker) Capabilities() Capabilities { return Capabilities{Gameplay: true} }

func (j *greedyJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageCardScored &&
		ctx.Scored != nil && ctx.Scored.Suit == cards.Diamonds
}

func (j *greedyJoker) Process(*effects.ProcessContext, OwnState) effects.ProcessResult {
	return effects.ProcessResult{Mult: 3, MultMult: 1}
}

// halfJoker: +20 Mult when the played hand has three or fewer cards.
type halfJoker struct{ Base }

func (j *halfJoker) Capabilities() Capabilities { return Capabilities{Gameplay: true} }

func (j *halfJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageHandPlayed && len(ctx.Played) <= 3 && len(ctx.Played) > 0
}

func (j *halfJoker) Process(*effects.ProcessContext, OwnState) effects.ProcessResult {
	return effects.ProcessResult{Mult: 20, MultMult: 1}
}

// openerJoker: +2 Mult, evaluated ahead of everything else at its stage.
type openerJoker struct{ Base }

func (j *openerJoker) Capabilities() Capabilities { return Capabilities{Gameplay: true} }

func (j *openerJoker) Priority(stage effects.Stage) int {
	if stage == effects.StageHandPlayed {
		return 10
	}
	return 0
}

func (j *openerJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageHandPlayed
}

func (j *openerJoker) Process(*effects.ProcessContext, OwnState) effects.ProcessResult {
	return effects.ProcessResult{Mult: 2, MultMult: 1}
}

// stackerJoker: +1 Mult for every hand played while it was in play. The
// accumulator lives in the state store and survives save/load.
type stackerJoker struct{ Base }

func (j *stackerJoker) Capabilities() Capabilities {
	return Capabilities{Gameplay: true, Stateful: true}
}

func (j *stackerJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageHandPlayed
}

func (j *stackerJoker) Process(_ *effects.ProcessContext, own OwnState) effects.ProcessResult {
	var mult float64
	own.Update(func(s *state.JokerState) {
		mult = s.Accumulator
		s.Accumulator++
	})
	return effects.ProcessResult{Mult: mult, MultMult: 1}
}

// midasJoker: earn $1 for each face card as it scores.
type midasJoker struct{ Base }

func (j *midasJoker) Capabilities() Capabilities {
	return Capabilities{Gameplay: true, Economy: true}
}

func (j *midasJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageCardScored &&
		ctx.Scored != nil && ctx.Scored.Rank >= cards.Jack && ctx.Scored.Rank <= cards.King
}

func (j *midasJoker) Process(*effects.ProcessContext, OwnState) effects.ProcessResult {
	return effects.ProcessResult{MultMult: 1, MoneyDelta: 1}
}

// echoJoker: +10 Chips when a face card scores, and the effect fires a
// second time via one retrigger.
type echoJoker struct{ Base }

func (j *echoJoker) Capabilities() Capabilities { return Capabilities{Gameplay: true} }

func (j *echoJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageCardScored &&
		ctx.Scored != nil && ctx.Scored.Rank >= cards.Jack && ctx.Scored.Rank <= cards.King
}

func (j *echoJoker) Process(ctx *effects.ProcessContext, _ OwnState) effects.ProcessResult {
	return effects.ProcessResult{
		Chips:     10,
		MultMult:  1,
		Retrigger: ctx.Repeat < 1,
	}
}

// glassJoker: x2 Mult on every hand, shattering after its fifth trigger.
type glassJoker struct{ Base }

const glassTriggerLimit = 5

func (j *glassJoker) Capabilities() Capabilities {
	return Capabilities{Gameplay: true, Stateful: true, Lifecycle: true}
}

func (j *glassJoker) Setup(own OwnState) {
	own.Update(func(s *state.JokerState) {
		s.TriggerLimit = glassTriggerLimit
	})
}

func (j *glassJoker) Triggers(ctx *effects.ProcessContext, s state.JokerState) bool {
	if ctx.Stage != effects.StageHandPlayed {
		return false
	}
	return s.TriggerLimit == 0 || s.TriggerCount < s.TriggerLimit
}

func (j *glassJoker) Process(_ *effects.ProcessContext, own OwnState) effects.ProcessResult {
	shattered := false
	own.Update(func(s *state.JokerState) {
		s.TriggerCount++
		shattered = s.TriggerLimit > 0 && s.TriggerCount >= s.TriggerLimit
	})
	res := effects.ProcessResult{MultMult: 2}
	if shattered {
		res.DestroySelf = true
		res.Message = fmt.Sprintf("%s shattered", j.M.Name)
	}
	return res
}

// transmuteJoker: twos score as aces of the same suit. Pure card modifier:
// it requests the transform and contributes no numbers itself.
type transmuteJoker struct{ Base }

func (j *transmuteJoker) Capabilities() Capabilities {
	return Capabilities{Gameplay: true, Modifier: true}
}

func (j *transmuteJoker) Triggers(ctx *effects.ProcessContext, _ state.JokerState) bool {
	return ctx.Stage == effects.StageCardScored &&
		ctx.Scored != nil && ctx.Scored.Rank == 2
}

func (j *transmuteJoker) Process(ctx *effects.ProcessContext, _ OwnState) effects.ProcessResult {
	ctx.RequestTransform(ctx.ScoredIndex, cards.New(cards.Ace, ctx.Scored.Suit), j.M.ID)
	return effects.NoopResult()
}
