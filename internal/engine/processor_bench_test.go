package engine

import (
	"fmt"
	"testing"

	"github.com/cardsim/joker-engine-go/internal/cards"
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/joker"
	"github.com/cardsim/joker-engine-go/internal/state"
)

func benchLineup(n int) []joker.Joker {
	lineup := make([]joker.Joker, n)
	for i := range lineup {
		res := effects.NoopResult()
		res.Mult = float64(i + 1)
		lineup[i] = newProbe(fmt.Sprintf("b%d", i), i, res, nil)
	}
	return lineup
}

// BenchmarkProcessCacheHit measures the steady state: identical context and
// lineup every call, so everything after the first call is a cache hit.
func BenchmarkProcessCacheHit(b *testing.B) {
	proc := NewProcessor(state.NewStore(), Options{})
	lineup := benchLineup(5)
	ctx := handCtx(cards.New(cards.Ace, cards.Diamonds), cards.New(cards.King, cards.Spades))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.Process(lineup, ctx)
	}
}

// BenchmarkProcessCacheMiss varies the context every call so the full
// evaluation path runs each time.
func BenchmarkProcessCacheMiss(b *testing.B) {
	proc := NewProcessor(state.NewStore(), Options{})
	lineup := benchLineup(5)
	ctx := handCtx(cards.New(cards.Ace, cards.Diamonds), cards.New(cards.King, cards.Spades))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx.Round = i
		proc.Process(lineup, ctx)
	}
}

// BenchmarkProcessUncached runs with the cache disabled as a baseline.
func BenchmarkProcessUncached(b *testing.B) {
	proc := NewProcessor(state.NewStore(), Options{DisableCache: true})
	lineup := benchLineup(5)
	ctx := handCtx(cards.New(cards.Ace, cards.Diamonds), cards.New(cards.King, cards.Spades))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.Process(lineup, ctx)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	proc := NewProcessor(state.NewStore(), Options{})
	lineup := benchLineup(5)
	ctx := handCtx(cards.New(cards.Ace, cards.Diamonds), cards.New(cards.King, cards.Spades))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.fingerprint(lineup, ctx)
	}
}
