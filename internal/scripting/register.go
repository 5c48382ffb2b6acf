package scripting

import (
	"fmt"
	"os"

	"github.com/cardsim/joker-engine-go/internal/catalog"
	"github.com/cardsim/joker-engine-go/internal/joker"
)

// RegisterCatalog registers a factory for every catalog entry that names a
// script file. Each source is compiled once up front so a broken script
// fails loading instead of the first hand.
func RegisterCatalog(r *joker.Registry, cat *catalog.Catalog) error {
	for kind, e := range cat.Entries() {
		if e.Script == "" {
			continue
		}
		if _, ok := r.Meta(kind); ok {
			return fmt.Errorf("catalog script %q shadows a registered kind", kind)
		}

		data, err := os.ReadFile(cat.ScriptPath(e))
		if err != nil {
			return fmt.Errorf("read script for %q: %w", kind, err)
		}
		source := string(data)

		meta := joker.Meta{Kind: kind, Name: e.Name, Rarity: joker.Rarity(e.Rarity)}
		if meta.Name == "" {
			meta.Name = kind
		}
		if e.Cost != nil {
			meta.Cost = *e.Cost
		}

		if _, err := NewJoker(meta, source); err != nil {
			return err
		}

		r.Register(meta, func(m joker.Meta) joker.Joker {
			j, err := NewJoker(m, source)
			if err != nil {
				// Source already compiled once above
				panic(err)
			}
			return j
		})
	}
	return nil
}
