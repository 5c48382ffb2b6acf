package effects

import "github.com/cardsim/joker-engine-go/internal/cards"

// Stage is the phase of a round an effect evaluation belongs to. Jokers use
// it to gate their trigger predicate; the processor uses it to look up
// per-stage priorities.
type Stage string

const (
	StageHandPlayed Stage = "hand_played"
	StageCardScored Stage = "card_scored"
	StageCardHeld   Stage = "card_held"
	StageDiscard    Stage = "discard"
	StageRoundEnd   Stage = "round_end"
)

// ProcessContext is the per-call view of game state handed to every joker.
// The input fields are set once by the caller and never change during the
// call; the scratch fields below may be written by joker effects and are
// collected into the AccumulatedEffect when the call completes.
//
// A context is created fresh for every scoring call and must not be reused
// or retained.
type ProcessContext struct {
	Stage     Stage
	Played    []cards.Card
	Held      []cards.Card
	Discarded []cards.Card

	// Scored is the card currently being scored during StageCardScored
	// events; nil otherwise. ScoredIndex is its position in Played.
	Scored      *cards.Card
	ScoredIndex int

	// Repeat is the retrigger depth of the current invocation: 0 for the
	// first call of a joker, 1 for its first retrigger, and so on. Managed
	// by the processor.
	Repeat int

	Money        int
	Ante         int
	Round        int
	HandsLeft    int
	DiscardsLeft int

	// Scratch outputs. Jokers append; the processor drains them into the
	// AccumulatedEffect. Applied by the scoring pipeline, never here.
	MoneyDelta int
	Destroyed  []string
	Transforms []CardTransform
	Messages   []string
}

// CountSuit returns how many played cards have the given suit. Helper for
// suit-gated jokers.
func (c *ProcessContext) CountSuit(s cards.Suit) int {
	n := 0
	for _, card := range c.Played {
		if card.Suit == s {
			n++
		}
	}
	return n
}

// CountRank returns how many played cards have the given rank.
func (c *ProcessContext) CountRank(r cards.Rank) int {
	n := 0
	for _, card := range c.Played {
		if card.Rank == r {
			n++
		}
	}
	return n
}

// RequestDestroy records a request to destroy the joker with the given id.
func (c *ProcessContext) RequestDestroy(jokerID string) {
	c.Destroyed = append(c.Destroyed, jokerID)
}

// RequestTransform records a request to replace the played card at index.
func (c *ProcessContext) RequestTransform(index int, to cards.Card, by string) {
	c.Transforms = append(c.Transforms, CardTransform{Index: index, To: to.Code(), By: by})
}
