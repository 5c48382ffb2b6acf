// Package engine hosts the effect processor: the orchestrator that turns a
// slot-ordered joker line-up plus a process context into one accumulated
// effect, with priority ordering, bounded retriggering, per-joker failure
// isolation, and a fingerprint-keyed result cache.
package engine

import (
	"sort"

	"github.com/cardsim/joker-engine-go/internal/cache"
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/joker"
	"github.com/cardsim/joker-engine-go/internal/state"
)

// DefaultRetriggerCap bounds how many times one joker may be invoked in a
// single scoring call. Retrigger counts can be bug-influenced, so the loop
// must never be unbounded.
const DefaultRetriggerCap = 100

// Options configures a Processor. The zero value gets usable defaults.
type Options struct {
	// RetriggerCap is the maximum invocations per joker per call.
	RetriggerCap int
	// CacheCapacity bounds the effect cache; <= 0 uses the cache default.
	CacheCapacity int
	// DisableCache turns the effect cache off entirely.
	DisableCache bool
	// Strategies is the per-field conflict resolution policy; zero means
	// defaults (every additive field sums).
	Strategies effects.FieldStrategies
}

// Processor produces one AccumulatedEffect per scoring event. One processor
// belongs to one game instance and is not safe for concurrent use (the
// cache metrics excepted, which are atomics).
type Processor struct {
	store        *state.Store
	strategies   effects.FieldStrategies
	retriggerCap int
	disableCache bool

	effectCache *cache.LRU[effects.Fingerprint, effects.AccumulatedEffect]

	// caps memoizes the capability classification per joker kind. The
	// classification is a pure function of the kind, never of instance
	// state, which makes the memo safe.
	caps map[string]joker.Capabilities

	// order is the reusable evaluation-order buffer.
	order []rankedJoker
}

type rankedJoker struct {
	j        joker.Joker
	priority int
	slot     int
}

// NewProcessor creates a processor bound to the game's state store.
func NewProcessor(store *state.Store, opts Options) *Processor {
	if opts.RetriggerCap <= 0 {
		opts.RetriggerCap = DefaultRetriggerCap
	}
	if !opts.Strategies.Chips.Valid() {
		opts.Strategies = effects.DefaultStrategies()
	}
	return &Processor{
		store:        store,
		strategies:   opts.Strategies,
		retriggerCap: opts.RetriggerCap,
		disableCache: opts.DisableCache,
		effectCache:  cache.NewLRU[effects.Fingerprint, effects.AccumulatedEffect](opts.CacheCapacity),
		caps:         make(map[string]joker.Capabilities),
	}
}

// Process evaluates the line-up against ctx and returns the accumulated
// effect. Side effects recorded on the result (money delta, destroy
// requests, card transforms) are applied by the caller afterwards, never
// here. The returned value may come from the cache and must be treated as
// read-only.
func (p *Processor) Process(lineup []joker.Joker, ctx *effects.ProcessContext) effects.AccumulatedEffect {
	fp := p.fingerprint(lineup, ctx)
	if !p.disableCache {
		if eff, ok := p.effectCache.Get(fp); ok {
			return eff
		}
	}

	eff := p.run(lineup, ctx)
	if !p.disableCache {
		p.effectCache.Put(fp, eff)
	}
	return eff
}

// run executes the uncached algorithm: order, dispatch, retrigger, fold.
func (p *Processor) run(lineup []joker.Joker, ctx *effects.ProcessContext) effects.AccumulatedEffect {
	p.rank(lineup, ctx.Stage)
	acc := effects.NewAccumulator(p.strategies)

	for _, rj := range p.order {
		j := rj.j
		caps := p.classify(j)
		if !caps.Gameplay {
			continue
		}

		id := j.Meta().ID
		own := joker.NewOwnState(id, p.store)

		ctx.Repeat = 0
		if !p.triggers(j, ctx) {
			continue
		}

		res := p.invoke(j, ctx, own)
		acc.Fold(res, id)

		// Bounded re-invocation: the cap counts total invocations of
		// this joker within this call, first one included.
		for invocations := 1; res.Retrigger && invocations < p.retriggerCap; invocations++ {
			ctx.Repeat = invocations
			res = p.invoke(j, ctx, own)
			acc.Fold(res, id)
		}
	}

	ctx.Repeat = 0
	acc.Drain(ctx)
	return acc.Result()
}

// rank rebuilds the evaluation order: priority descending, original slot
// order on ties. The stable sort is load-bearing for the FirstWins and
// LastWins strategies and must not change.
func (p *Processor) rank(lineup []joker.Joker, stage effects.Stage) {
	p.order = p.order[:0]
	for slot, j := range lineup {
		p.order = append(p.order, rankedJoker{j: j, priority: j.Priority(stage), slot: slot})
	}
	sort.SliceStable(p.order, func(a, b int) bool {
		return p.order[a].priority > p.order[b].priority
	})
}

// classify returns the memoized capability descriptor for a joker's kind.
func (p *Processor) classify(j joker.Joker) joker.Capabilities {
	kind := j.Meta().Kind
	if caps, ok := p.caps[kind]; ok {
		return caps
	}
	caps := j.Capabilities()
	p.caps[kind] = caps
	return caps
}

// triggers evaluates the trigger predicate with failure isolation: a
// panicking predicate reads as false and flags the joker's state for reset.
func (p *Processor) triggers(j joker.Joker, ctx *effects.ProcessContext) (fires bool) {
	defer func() {
		if r := recover(); r != nil {
			p.store.MarkForReset(j.Meta().ID)
			fires = false
		}
	}()
	return j.Triggers(ctx, p.store.Get(j.Meta().ID))
}

// invoke runs one effect invocation with failure isolation: a panicking
// joker degrades to a no-op result for this call and its state is flagged
// for reset on the next validation pass. The whole scoring call never
// aborts because one joker misbehaves.
func (p *Processor) invoke(j joker.Joker, ctx *effects.ProcessContext, own joker.OwnState) (res effects.ProcessResult) {
	defer func() {
		if r := recover(); r != nil {
			p.store.MarkForReset(j.Meta().ID)
			res = effects.NoopResult()
		}
	}()
	res = j.Process(ctx, own)
	if res.MultMult == 0 {
		res.MultMult = 1
	}
	return res
}

// fingerprint keys the cache by everything that can influence the outcome:
// the ordered joker identities, each joker's state version, and the
// read-only context fields.
func (p *Processor) fingerprint(lineup []joker.Joker, ctx *effects.ProcessContext) effects.Fingerprint {
	b := effects.NewFingerprintBuilder()
	for _, j := range lineup {
		m := j.Meta()
		b = b.Joker(m.ID, m.Kind, p.store.Version(m.ID))
	}
	return b.Context(ctx).Fingerprint()
}

// ClearCache drops every cached effect. Operational; correctness never
// requires it.
func (p *Processor) ClearCache() {
	p.effectCache.Clear()
}

// ClearClassification drops the memoized per-kind capability descriptors.
func (p *Processor) ClearClassification() {
	clear(p.caps)
}

// SetCacheCapacity resizes the effect cache.
func (p *Processor) SetCacheCapacity(capacity int) {
	p.effectCache.Resize(capacity)
}

// CacheMetrics reports cumulative hit and miss counts.
func (p *Processor) CacheMetrics() (hits, misses uint64) {
	return p.effectCache.Metrics()
}

// CacheLen reports the number of live cache entries.
func (p *Processor) CacheLen() int {
	return p.effectCache.Len()
}

// CacheCapacity returns the current effect cache capacity.
func (p *Processor) CacheCapacity() int {
	return p.effectCache.Capacity()
}
