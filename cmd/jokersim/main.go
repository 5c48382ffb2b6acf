// jokersim wires the whole engine together: it loads configuration and the
// joker catalog, plays a short demo run through the scoring pipeline,
// snapshots the session to SQLite, and optionally serves the ops API.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/cardsim/joker-engine-go/internal/api"
	"github.com/cardsim/joker-engine-go/internal/cards"
	"github.com/cardsim/joker-engine-go/internal/catalog"
	"github.com/cardsim/joker-engine-go/internal/config"
	"github.com/cardsim/joker-engine-go/internal/effects"
	"github.com/cardsim/joker-engine-go/internal/engine"
	"github.com/cardsim/joker-engine-go/internal/joker"
	"github.com/cardsim/joker-engine-go/internal/scoring"
	"github.com/cardsim/joker-engine-go/internal/scripting"
	"github.com/cardsim/joker-engine-go/internal/state"
	"github.com/cardsim/joker-engine-go/internal/store"
)

var logger = log.New(os.Stdout, "[SIM] ", log.LstdFlags)

func main() {
	if err := run(); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := joker.NewRegistry()
	joker.RegisterBuiltins(registry)

	if cfg.CatalogDir != "" {
		cat, err := catalog.Load(cfg.CatalogDir)
		if err != nil {
			return err
		}
		if err := cat.Apply(registry); err != nil {
			return err
		}
		if err := scripting.RegisterCatalog(registry, cat); err != nil {
			return err
		}
		logger.Printf("catalog loaded from %s (%d entries)", cfg.CatalogDir, len(cat.Entries()))
	}
	reg := registry.Freeze()
	logger.Printf("registry frozen with %d joker kinds", len(reg.Kinds()))

	stateStore := state.NewStore()
	collection := joker.NewCollection(cfg.MaxSlots, stateStore)
	for i, kind := range []string{"jolly", "greedy", "glass", "midas", "echo"} {
		if i >= cfg.MaxSlots {
			break
		}
		j, err := reg.New(kind, fmt.Sprintf("%s_%d", kind, i))
		if err != nil {
			return err
		}
		if err := collection.Add(j); err != nil {
			return err
		}
	}

	proc := engine.NewProcessor(stateStore, engine.Options{
		RetriggerCap:  cfg.RetriggerCap,
		CacheCapacity: cfg.CacheCapacity,
	})
	pipeline := scoring.NewPipeline()

	sim := &simRun{money: 10, collection: collection}
	hands := playDemoRun(proc, pipeline, sim, collection)

	logger.Printf("run complete: %d hands, total score %s, money $%d",
		len(hands), pipeline.Total().String(), sim.money)
	hits, misses := proc.CacheMetrics()
	logger.Printf("effect cache: %d hits, %d misses", hits, misses)

	if cfg.DBPath != "" {
		if err := persist(cfg.DBPath, sim, collection, stateStore, pipeline, hands); err != nil {
			return err
		}
	}

	if cfg.OpsAddr != "" {
		var db store.DB
		if cfg.DBPath != "" {
			sq, err := store.NewSQLiteDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer sq.Close()
			db = sq
		}
		srv := api.NewServer(db, proc, reg)
		logger.Printf("ops API listening on %s", cfg.OpsAddr)
		return http.ListenAndServe(cfg.OpsAddr, srv.Routes())
	}
	return nil
}

// simRun is the mutable game world the pipeline applies side effects to.
type simRun struct {
	money      int
	collection *joker.Collection
	hand       []cards.Card
}

func (r *simRun) AddMoney(delta int) { r.money += delta }

func (r *simRun) DestroyJoker(id string) {
	if err := r.collection.Remove(id); err != nil {
		logger.Printf("destroy %s: %v", id, err)
		return
	}
	logger.Printf("joker %s destroyed", id)
}

func (r *simRun) TransformCard(tr effects.CardTransform) {
	if tr.Index < 0 || tr.Index >= len(r.hand) {
		return
	}
	c := cards.FromCode(tr.To)
	logger.Printf("card %d transformed to %s by %s", tr.Index, c, tr.By)
	r.hand[tr.Index] = c
}

// playDemoRun scores a few fixed hands so a fresh checkout produces
// visible output end to end.
func playDemoRun(proc *engine.Processor, pipeline *scoring.Pipeline, sim *simRun, collection *joker.Collection) []store.HandResult {
	demoHands := []struct {
		base   scoring.BaseScore
		played []cards.Card
	}{
		{scoring.BaseScore{Chips: 30, Mult: 2}, []cards.Card{
			cards.New(cards.Ace, cards.Diamonds),
			cards.New(cards.King, cards.Diamonds),
			cards.New(cards.Rank(10), cards.Spades),
		}},
		{scoring.BaseScore{Chips: 50, Mult: 4}, []cards.Card{
			cards.New(cards.Queen, cards.Hearts),
			cards.New(cards.Queen, cards.Clubs),
		}},
		{scoring.BaseScore{Chips: 80, Mult: 7}, []cards.Card{
			cards.New(cards.Rank(9), cards.Diamonds),
			cards.New(cards.Rank(9), cards.Hearts),
			cards.New(cards.Rank(9), cards.Spades),
		}},
	}

	var results []store.HandResult
	for i, h := range demoHands {
		sim.hand = h.played
		eff := scoreHand(proc, sim, collection, h.played, i+1)
		score := pipeline.ScoreHand(h.base, eff)
		pipeline.Apply(eff, sim)

		logger.Printf("hand %d: chips +%.0f mult +%.0f x%.1f -> %s",
			i+1, eff.Chips, eff.Mult, eff.MultMult, score.String())
		for _, msg := range eff.Messages {
			logger.Printf("  %s", msg)
		}

		details, _ := json.Marshal(map[string]interface{}{"messages": eff.Messages})
		f, _ := score.Float64()
		results = append(results, store.HandResult{
			HandNo:     i + 1,
			Chips:      h.base.Chips + eff.Chips,
			Mult:       (h.base.Mult + eff.Mult) * eff.MultMult,
			Score:      f,
			MoneyDelta: eff.MoneyDelta,
			Details:    string(details),
		})
	}
	return results
}

// scoreHand runs the hand-played stage then a card-scored stage per card,
// folding the per-stage effects into one accumulated effect.
func scoreHand(proc *engine.Processor, sim *simRun, collection *joker.Collection, played []cards.Card, round int) effects.AccumulatedEffect {
	lineup := collection.Jokers()

	ctx := &effects.ProcessContext{
		Stage:  effects.StageHandPlayed,
		Played: played,
		Money:  sim.money,
		Ante:   1,
		Round:  round,
	}
	total := proc.Process(lineup, ctx)

	for i := range played {
		scored := played[i]
		sctx := &effects.ProcessContext{
			Stage:       effects.StageCardScored,
			Played:      played,
			Scored:      &scored,
			ScoredIndex: i,
			Money:       sim.money,
			Ante:        1,
			Round:       round,
		}
		total = combine(total, proc.Process(lineup, sctx))
	}
	return total
}

// combine folds stage effects together: additives sum, multipliers
// compound, side effects concatenate.
func combine(a, b effects.AccumulatedEffect) effects.AccumulatedEffect {
	a.Chips += b.Chips
	a.Mult += b.Mult
	a.MultMult *= b.MultMult
	a.MoneyDelta += b.MoneyDelta
	a.Destroyed = append(a.Destroyed, b.Destroyed...)
	a.Transforms = append(a.Transforms, b.Transforms...)
	a.Messages = append(a.Messages, b.Messages...)
	return a
}

// persist snapshots the finished run into SQLite.
func persist(path string, sim *simRun, collection *joker.Collection, stateStore *state.Store, pipeline *scoring.Pipeline, hands []store.HandResult) error {
	db, err := store.NewSQLiteDB(path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	var entries []store.LineupEntry
	for _, j := range collection.Jokers() {
		entries = append(entries, store.LineupEntry{ID: j.Meta().ID, Kind: j.Meta().Kind})
	}
	lineup, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	blob, err := stateStore.Serialize()
	if err != nil {
		return err
	}

	sess := &store.Session{
		Name:          "demo run",
		Money:         sim.money,
		Ante:          1,
		Round:         len(hands),
		LineupJSON:    string(lineup),
		StateBlob:     blob,
		TotalScore:    pipeline.Total().String(),
		HandCount:     len(hands),
		EngineVersion: api.EngineVersion,
	}
	if err := db.SaveSession(sess); err != nil {
		return err
	}
	if err := db.SaveHands(sess.ID, hands); err != nil {
		return err
	}
	logger.Printf("session %s saved to %s", sess.ID, path)
	return nil
}
