// Package catalog loads joker metadata from YAML content files and applies
// it to a registry before it freezes. Content packs tune names, rarities
// and costs, and may declare whole new jokers whose behavior lives in a
// script file.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cardsim/joker-engine-go/internal/joker"
)

// Entry is one joker's catalog record. Zero fields keep the registered
// default.
type Entry struct {
	Name   string `yaml:"name,omitempty"`
	Rarity string `yaml:"rarity,omitempty"`
	Cost   *int   `yaml:"cost,omitempty"`

	// Script names a JavaScript behavior file relative to the catalog
	// directory. Only meaningful for kinds not built in; the wiring layer
	// compiles and registers these.
	Script string `yaml:"script,omitempty"`
}

type file struct {
	Jokers map[string]Entry `yaml:"jokers"`
}

// Catalog is the merged metadata set.
type Catalog struct {
	dir     string
	entries map[string]Entry
}

// Load reads default.yaml then override.yaml (optional) from dir and
// merges them, override winning per field.
func Load(dir string) (*Catalog, error) {
	def, err := readFile(filepath.Join(dir, "default.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read catalog default: %w", err)
	}

	over, err := readFile(filepath.Join(dir, "override.yaml"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read catalog override: %w", err)
		}
		over = file{}
	}

	entries := make(map[string]Entry, len(def.Jokers))
	for kind, e := range def.Jokers {
		entries[kind] = e
	}
	for kind, o := range over.Jokers {
		entries[kind] = merge(entries[kind], o)
	}
	return &Catalog{dir: dir, entries: entries}, nil
}

func readFile(path string) (file, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return file{}, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return file{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

func merge(base, over Entry) Entry {
	if over.Name != "" {
		base.Name = over.Name
	}
	if over.Rarity != "" {
		base.Rarity = over.Rarity
	}
	if over.Cost != nil {
		base.Cost = over.Cost
	}
	if over.Script != "" {
		base.Script = over.Script
	}
	return base
}

// Entries returns the merged records keyed by kind.
func (c *Catalog) Entries() map[string]Entry {
	return c.entries
}

// ScriptPath resolves a script reference against the catalog directory.
func (c *Catalog) ScriptPath(e Entry) string {
	return filepath.Join(c.dir, e.Script)
}

// Apply overrides the registry metadata for every cataloged kind that is
// already registered. Entries declaring a script are skipped here; the
// wiring layer registers those itself. Unknown scriptless kinds are an
// error: the catalog references behavior that does not exist.
func (c *Catalog) Apply(r *joker.Registry) error {
	for kind, e := range c.entries {
		meta, ok := r.Meta(kind)
		if !ok {
			if e.Script != "" {
				continue
			}
			return fmt.Errorf("catalog entry %q has no registered behavior and no script", kind)
		}
		if e.Name != "" {
			meta.Name = e.Name
		}
		if e.Rarity != "" {
			meta.Rarity = joker.Rarity(e.Rarity)
		}
		if e.Cost != nil {
			meta.Cost = *e.Cost
		}
		if err := r.SetMeta(kind, meta); err != nil {
			return err
		}
	}
	return nil
}
