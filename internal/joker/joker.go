// Package joker defines the polymorphic joker abstraction hosted by the
// effect processor: identity metadata, capability axes with safe defaults,
// the per-type capability descriptor, the read-only kind registry, and the
// slot-ordered collection a game owns.
package joker

import (
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/state"
)

// Rarity buckets jokers for shop generation. Opaque to the engine.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Meta is a joker's immutable identity. Kind names the joker type shared by
// every instance of it; ID names this one instance.
type Meta struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
	Cost   int    `json:"cost"`
}

// Capabilities is the explicit capability descriptor attached to each joker
// type at construction. It is a pure function of the kind, never of
// instance state, so the processor memoizes it per kind.
type Capabilities struct {
	Gameplay  bool `json:"gameplay"`  // has a trigger predicate and effect method
	Modifier  bool `json:"modifier"`  // writes card transforms or destroy requests
	Economy   bool `json:"economy"`   // produces money deltas
	Stateful  bool `json:"stateful"`  // keeps persistent state in the store
	Lifecycle bool `json:"lifecycle"` // has non-trivial setup/teardown hooks
}

// OwnState is a joker's window onto its own persistent state. It cannot
// reach any other joker's bag.
type OwnState struct {
	id    string
	store *state.Store
}

// NewOwnState binds a joker id to a store. The collection constructs these;
// tests may too.
func NewOwnState(id string, store *state.Store) OwnState {
	return OwnState{id: id, store: store}
}

// Get returns a copy of the joker's state bag.
func (o OwnState) Get() state.JokerState {
	return o.store.Get(o.id)
}

// Update applies fn atomically and bumps the state version.
func (o OwnState) Update(fn func(*state.JokerState)) uint64 {
	return o.store.Update(o.id, fn)
}

// Joker is the single abstraction every joker satisfies. Most types embed
// Base and override only the axes they need.
type Joker interface {
	// Meta returns the immutable identity.
	Meta() Meta

	// Capabilities returns the type's capability descriptor.
	Capabilities() Capabilities

	// Priority orders evaluation for a stage: higher runs earlier, default
	// 0, ties resolved by slot order.
	Priority(stage effects.Stage) int

	// Triggers reports whether the joker fires for this context. It must
	// be side-effect-free: it receives a copy of the state bag and no way
	// to write anything.
	Triggers(ctx *effects.ProcessContext, s state.JokerState) bool

	// Process computes the joker's effect. It may mutate its own state
	// through own (bumping the version) and the scratch fields of ctx.
	Process(ctx *effects.ProcessContext, own OwnState) effects.ProcessResult

	// Setup runs once when the joker enters play.
	Setup(own OwnState)

	// Teardown runs when the joker is sold or destroyed, before its state
	// is purged from the store.
	Teardown(own OwnState)
}

// Base supplies safe defaults for every optional axis. Embed it and
// override what the joker actually does.
type Base struct {
	M Meta
}

func (b Base) Meta() Meta                         { return b.M }
func (b Base) Capabilities() Capabilities         { return Capabilities{} }
func (b Base) Priority(effects.Stage) int         { return 0 }
func (b Base) Setup(OwnState)                     {}
func (b Base) Teardown(OwnState)                  {}

func (b Base) Triggers(*effects.ProcessContext, state.JokerState) bool {
	return false
}

func (b Base) Process(*effects.ProcessContext, OwnState) effects.ProcessResult {
	return effects.NoopResult()
}
