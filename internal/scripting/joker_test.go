package scripting

import (
	"strings"
	"testing"

	"github.com/cardsim/joker-engine-go/internal/cards"
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/joker"
	"github.com/cardsim/joker-engine-go/internal/state"
)

const flatMultScript = `
capabilities = { gameplay: true };
priority = { hand_played: 5 };
triggers = function(ctx) {
	return ctx.stage === "hand_played";
};
process = function(ctx, state) {
	return { mult: 4, message: "scripted +4" };
};
`

const counterScript = `
capabilities = { gameplay: true, stateful: true };
triggers = function(ctx) {
	return ctx.stage === "hand_played";
};
process = function(ctx, state) {
	return { mult: state.accumulator, accumulator: state.accumulator + 1 };
};
`

func scriptContext(stage effects.Stage) *effects.ProcessContext {
	return &effects.ProcessContext{
		Stage: stage,
		Played: []cards.Card{
			cards.New(cards.Ace, cards.Diamonds),
			cards.New(cards.King, cards.Spades),
		},
		Money: 12,
		Ante:  2,
		Round: 3,
	}
}

func newTestJoker(t *testing.T, kind, source string) (*Joker, joker.OwnState) {
	t.Helper()
	j, err := NewJoker(joker.Meta{ID: "s1", Kind: kind, Name: kind}, source)
	if err != nil {
		t.Fatalf("NewJoker(%s): %v", kind, err)
	}
	return j, joker.NewOwnState("s1", state.NewStore())
}

func TestScriptedFlatMult(t *testing.T) {
	j, own := newTestJoker(t, "flat", flatMultScript)

	if got := j.Priority(effects.StageHandPlayed); got != 5 {
		t.Errorf("Priority(hand_played) = %d, want 5", got)
	}
	if got := j.Priority(effects.StageRoundEnd); got != 0 {
		t.Errorf("Priority(round_end) = %d, want 0", got)
	}
	if !j.Capabilities().Gameplay {
		t.Error("expected gameplay capability")
	}
	if j.Capabilities().Stateful {
		t.Error("unexpected stateful capability")
	}

	ctx := scriptContext(effects.StageHandPlayed)
	if !j.Triggers(ctx, own.Get()) {
		t.Fatal("expected trigger on hand_played")
	}
	if j.Triggers(scriptContext(effects.StageRoundEnd), own.Get()) {
		t.Error("unexpected trigger on round_end")
	}

	res := j.Process(ctx, own)
	if res.Mult != 4 {
		t.Errorf("Mult = %v, want 4", res.Mult)
	}
	if res.MultMult != 1 {
		t.Errorf("MultMult = %v, want 1", res.MultMult)
	}
	if res.Message != "scripted +4" {
		t.Errorf("Message = %q", res.Message)
	}
}

// A scripted joker and a built-in with identical behavior must produce
// identical effects.
func TestScriptedMatchesBuiltin(t *testing.T) {
	r := joker.NewRegistry()
	joker.RegisterBuiltins(r)
	reg := r.Freeze()

	builtin, err := reg.New("jolly", "b1")
	if err != nil {
		t.Fatal(err)
	}
	scripted, own := newTestJoker(t, "jolly_js", flatMultScript)

	ctx := scriptContext(effects.StageHandPlayed)
	store := state.NewStore()
	want := builtin.Process(ctx, joker.NewOwnState("b1", store))
	got := scripted.Process(ctx, own)

	if got.Chips != want.Chips || got.Mult != want.Mult || got.MultMult != want.MultMult {
		t.Errorf("scripted effect %+v, builtin %+v", got, want)
	}
}

func TestScriptedStateWriteback(t *testing.T) {
	j, own := newTestJoker(t, "counter", counterScript)
	ctx := scriptContext(effects.StageHandPlayed)

	for i := 0; i < 3; i++ {
		res := j.Process(ctx, own)
		if res.Mult != float64(i) {
			t.Errorf("pass %d: Mult = %v, want %d", i, res.Mult, i)
		}
	}
	if got := own.Get().Accumulator; got != 3 {
		t.Errorf("Accumulator = %v, want 3", got)
	}
	if got := own.Get().Version; got != 3 {
		t.Errorf("Version = %d, want 3", got)
	}
}

func TestScriptedTriggersIsReadOnly(t *testing.T) {
	src := `
triggers = function(ctx, state) {
	state.accumulator = 99;
	ctx.money = 0;
	return true;
};
process = function(ctx, state) { return {}; };
`
	j, own := newTestJoker(t, "mutator", src)
	ctx := scriptContext(effects.StageHandPlayed)

	if !j.Triggers(ctx, own.Get()) {
		t.Fatal("expected trigger")
	}
	if got := own.Get().Accumulator; got != 0 {
		t.Errorf("Accumulator = %v, want 0 after predicate", got)
	}
	if ctx.Money != 12 {
		t.Errorf("ctx.Money = %d, want 12", ctx.Money)
	}
}

func TestScriptedCardAccess(t *testing.T) {
	src := `
triggers = function(ctx) { return ctx.stage === "card_scored"; };
process = function(ctx, state) {
	if (ctx.scored.suit === "D") {
		return { chips: ctx.scored.chips };
	}
	return {};
};
`
	j, own := newTestJoker(t, "suited", src)

	scored := cards.New(cards.Ace, cards.Diamonds)
	ctx := scriptContext(effects.StageCardScored)
	ctx.Scored = &scored

	res := j.Process(ctx, own)
	if res.Chips != 11 {
		t.Errorf("Chips = %v, want 11", res.Chips)
	}
}

func TestScriptedMissingProcess(t *testing.T) {
	_, err := NewJoker(joker.Meta{Kind: "bad"}, `triggers = function(ctx) { return true; };`)
	if err == nil {
		t.Fatal("expected error for script without process()")
	}
	if !strings.Contains(err.Error(), "process") {
		t.Errorf("error %q does not mention process", err)
	}
}

func TestScriptedSyntaxError(t *testing.T) {
	_, err := NewJoker(joker.Meta{Kind: "broken"}, `process = function( {`)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestScriptedRuntimeErrorPanics(t *testing.T) {
	src := `
triggers = function(ctx) { return true; };
process = function(ctx, state) { return state.missing.field; };
`
	j, own := newTestJoker(t, "faulty", src)

	defer func() {
		if recover() == nil {
			t.Error("expected panic from script runtime error")
		}
	}()
	j.Process(scriptContext(effects.StageHandPlayed), own)
}

func TestSandboxBlocksHostAccess(t *testing.T) {
	src := `
triggers = function(ctx) { return true; };
process = function(ctx, state) {
	if (typeof require !== "undefined") { return { mult: 1 }; }
	if (typeof fetch !== "undefined") { return { mult: 2 }; }
	return { mult: 0 };
};
`
	j, own := newTestJoker(t, "probe", src)
	if res := j.Process(scriptContext(effects.StageHandPlayed), own); res.Mult != 0 {
		t.Errorf("sandbox leak: Mult = %v", res.Mult)
	}
}

func TestScriptedDefaultCapabilities(t *testing.T) {
	j, _ := newTestJoker(t, "plain", `process = function(ctx, state) { return {}; };`)
	if !j.Capabilities().Gameplay {
		t.Error("expected gameplay default when script declares nothing")
	}
	if j.triggers != nil {
		t.Error("expected nil trigger predicate")
	}
	if j.Triggers(scriptContext(effects.StageHandPlayed), state.DefaultState()) {
		t.Error("joker without triggers() must never fire")
	}
}
