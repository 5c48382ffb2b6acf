// Package scripting hosts jokers whose behavior is written in JavaScript.
// A script declares its capability descriptor and two functions, triggers()
// and process(); the host exposes them behind the standard joker interface
// so the processor cannot tell a scripted joker from a built-in one.
//
// Script contract:
//
//	capabilities = { gameplay: true, stateful: true }
//	priority = { hand_played: 5 }          // optional, per stage
//	triggers = function(ctx) { ... }       // must not mutate anything
//	process  = function(ctx, state) {
//	    return { mult: 4, accumulator: state.accumulator + 1 }
//	}
package scripting

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/cardsim/joker-engine-go/internal/cards"
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/joker"
	"github.com/cardsim/joker-engine-go/internal/state"
)

// Joker is a script-backed joker instance. Each instance owns its own
// sandboxed runtime; a game's jokers run on one goroutine, so no locking.
type Joker struct {
	joker.Base
	caps       joker.Capabilities
	priorities map[effects.Stage]int

	rt       *goja.Runtime
	triggers goja.Callable
	process  goja.Callable
}

// NewJoker evaluates source in a fresh sandboxed runtime and binds it to
// meta. The script must define a process function; triggers is optional
// and defaults to never firing.
func NewJoker(meta joker.Meta, source string) (*Joker, error) {
	rt := goja.New()
	sandbox(rt)

	if _, err := rt.RunString(source); err != nil {
		return nil, fmt.Errorf("script %s: %w", meta.Kind, err)
	}

	j := &Joker{
		Base:       joker.Base{M: meta},
		caps:       joker.Capabilities{Gameplay: true},
		priorities: make(map[effects.Stage]int),
		rt:         rt,
	}

	if v := rt.Get("capabilities"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		j.caps = parseCapabilities(v.Export())
	}
	if v := rt.Get("priority"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		if m, ok := v.Export().(map[string]interface{}); ok {
			for stage, p := range m {
				j.priorities[effects.Stage(stage)] = toInt(p)
			}
		}
	}

	if fn, ok := goja.AssertFunction(rt.Get("triggers")); ok {
		j.triggers = fn
	}
	fn, ok := goja.AssertFunction(rt.Get("process"))
	if !ok {
		return nil, fmt.Errorf("script %s: process() function is not defined", meta.Kind)
	}
	j.process = fn

	return j, nil
}

// sandbox blocks globals a content-pack script has no business touching.
func sandbox(rt *goja.Runtime) {
	rt.Set("require", goja.Undefined())
	rt.Set("fetch", goja.Undefined())
	rt.Set("XMLHttpRequest", goja.Undefined())
	rt.Set("eval", goja.Undefined())
	rt.Set("Function", goja.Undefined())
}

// Capabilities returns the descriptor the script declared.
func (j *Joker) Capabilities() joker.Capabilities { return j.caps }

// Priority returns the script's per-stage priority, default 0.
func (j *Joker) Priority(stage effects.Stage) int { return j.priorities[stage] }

// Triggers calls the script's predicate. The script only ever sees value
// copies, so it cannot violate the no-side-effects contract. A script
// error reads as "does not trigger".
func (j *Joker) Triggers(ctx *effects.ProcessContext, s state.JokerState) bool {
	if j.triggers == nil {
		return false
	}
	v, err := j.triggers(goja.Undefined(), j.contextValue(ctx), j.stateValue(s))
	if err != nil {
		return false
	}
	return v.ToBoolean()
}

// Process calls the script's effect function and maps its returned object
// onto a ProcessResult, writing any returned state fields back through own.
// A script runtime error panics so the processor's failure isolation
// substitutes a no-op and flags the state for reset.
func (j *Joker) Process(ctx *effects.ProcessContext, own joker.OwnState) effects.ProcessResult {
	v, err := j.process(goja.Undefined(), j.contextValue(ctx), j.stateValue(own.Get()))
	if err != nil {
		panic(fmt.Sprintf("script %s: %v", j.Base.M.Kind, err))
	}

	out, _ := v.Export().(map[string]interface{})
	res := effects.NoopResult()
	if out == nil {
		return res
	}

	if x, ok := out["chips"]; ok {
		res.Chips = toFloat(x)
	}
	if x, ok := out["mult"]; ok {
		res.Mult = toFloat(x)
	}
	if x, ok := out["multMult"]; ok {
		res.MultMult = toFloat(x)
	}
	if x, ok := out["moneyDelta"]; ok {
		res.MoneyDelta = toInt(x)
	}
	if x, ok := out["retrigger"]; ok {
		res.Retrigger, _ = x.(bool)
	}
	if x, ok := out["destroySelf"]; ok {
		res.DestroySelf, _ = x.(bool)
	}
	if x, ok := out["message"]; ok {
		res.Message, _ = x.(string)
	}

	acc, hasAcc := out["accumulator"]
	custom, hasCustom := out["custom"].(map[string]interface{})
	if hasAcc || hasCustom {
		own.Update(func(s *state.JokerState) {
			if hasAcc {
				s.Accumulator = toFloat(acc)
			}
			for k, v := range custom {
				s.Set(k, toFloat(v))
			}
		})
	}
	return res
}

// contextValue mirrors the read-only context fields into a script object.
func (j *Joker) contextValue(ctx *effects.ProcessContext) goja.Value {
	obj := map[string]interface{}{
		"stage":        string(ctx.Stage),
		"money":        ctx.Money,
		"ante":         ctx.Ante,
		"round":        ctx.Round,
		"handsLeft":    ctx.HandsLeft,
		"discardsLeft": ctx.DiscardsLeft,
		"repeat":       ctx.Repeat,
		"played":       cardList(ctx.Played),
		"held":         cardList(ctx.Held),
		"discarded":    cardList(ctx.Discarded),
	}
	if ctx.Scored != nil {
		obj["scored"] = cardValue(*ctx.Scored)
		obj["scoredIndex"] = ctx.ScoredIndex
	}
	return j.rt.ToValue(obj)
}

func (j *Joker) stateValue(s state.JokerState) goja.Value {
	custom := make(map[string]interface{}, len(s.Custom))
	for k, v := range s.Custom {
		custom[k] = v
	}
	return j.rt.ToValue(map[string]interface{}{
		"accumulator":  s.Accumulator,
		"triggerCount": s.TriggerCount,
		"triggerLimit": s.TriggerLimit,
		"custom":       custom,
	})
}

func cardList(cs []cards.Card) []map[string]interface{} {
	out := make([]map[string]interface{}, len(cs))
	for i, c := range cs {
		out[i] = cardValue(c)
	}
	return out
}

func cardValue(c cards.Card) map[string]interface{} {
	return map[string]interface{}{
		"rank":  int(c.Rank),
		"suit":  cards.SuitCodes[c.Suit],
		"chips": c.ChipValue(),
	}
}

func parseCapabilities(v interface{}) joker.Capabilities {
	caps := joker.Capabilities{}
	m, ok := v.(map[string]interface{})
	if !ok {
		return joker.Capabilities{Gameplay: true}
	}
	flag := func(key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	caps.Gameplay = flag("gameplay")
	caps.Modifier = flag("modifier")
	caps.Economy = flag("economy")
	caps.Stateful = flag("stateful")
	caps.Lifecycle = flag("lifecycle")
	return caps
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
