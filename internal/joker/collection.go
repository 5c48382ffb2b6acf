package joker

import (
	"errors"
	"fmt"

	"github.com/cardsim/joker-engine-go/internal/state"
)

// ErrSlotsFull is returned when adding to a collection at capacity.
var ErrSlotsFull = errors.New("joker slots full")

// Collection owns the game's jokers in slot order, up to a fixed number of
// slots. Adding runs the setup hook; removing runs teardown and then purges
// the joker's state from the store. One collection belongs to one game.
type Collection struct {
	slots    []Joker
	maxSlots int
	store    *state.Store
}

// DefaultMaxSlots matches the standard five joker slots.
const DefaultMaxSlots = 5

// NewCollection creates a collection bound to a state store.
func NewCollection(maxSlots int, store *state.Store) *Collection {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &Collection{
		slots:    make([]Joker, 0, maxSlots),
		maxSlots: maxSlots,
		store:    store,
	}
}

// Add appends j to the next free slot and runs its setup hook.
func (c *Collection) Add(j Joker) error {
	if len(c.slots) >= c.maxSlots {
		return ErrSlotsFull
	}
	c.slots = append(c.slots, j)
	j.Setup(NewOwnState(j.Meta().ID, c.store))
	return nil
}

// Remove sells or destroys the joker with the given instance id: teardown
// hook first, then its state is purged.
func (c *Collection) Remove(id string) error {
	for i, j := range c.slots {
		if j.Meta().ID != id {
			continue
		}
		j.Teardown(NewOwnState(id, c.store))
		c.store.Remove(id)
		c.slots = append(c.slots[:i], c.slots[i+1:]...)
		return nil
	}
	return fmt.Errorf("no joker with id %q", id)
}

// Jokers returns the slot-ordered line-up. Callers must not mutate the
// returned slice.
func (c *Collection) Jokers() []Joker {
	return c.slots
}

// Len reports how many slots are occupied.
func (c *Collection) Len() int {
	return len(c.slots)
}

// MaxSlots reports the slot capacity.
func (c *Collection) MaxSlots() int {
	return c.maxSlots
}

// LiveIDs returns the set of instance ids currently in play, for state
// store compaction.
func (c *Collection) LiveIDs() map[string]bool {
	live := make(map[string]bool, len(c.slots))
	for _, j := range c.slots {
		live[j.Meta().ID] = true
	}
	return live
}
