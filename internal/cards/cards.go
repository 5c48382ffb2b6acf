package cards

import "fmt"

// Suit identifies one of the four French suits.
type Suit uint8

const (
	Diamonds Suit = iota
	Hearts
	Spades
	Clubs
)

var suitSymbols = [...]string{"♦", "♥", "♠", "♣"}

// SuitCodes maps suits to the single-character codes used in save blobs.
var SuitCodes = map[Suit]string{
	Diamonds: "D", Hearts: "H", Spades: "S", Clubs: "C",
}

func (s Suit) String() string {
	if int(s) < len(suitSymbols) {
		return suitSymbols[s]
	}
	return "?"
}

// Rank is the card rank: 2-10, J=11, Q=12, K=13, A=14.
type Rank uint8

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", uint8(r))
	}
}

// Card is a playing card. The zero value is not a valid card; use New.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// New builds a card, clamping out-of-range inputs to the nearest valid value.
func New(rank Rank, suit Suit) Card {
	if rank < 2 {
		rank = 2
	}
	if rank > Ace {
		rank = Ace
	}
	if suit > Clubs {
		suit = Clubs
	}
	return Card{Rank: rank, Suit: suit}
}

// String returns a human-readable representation like "A♦" or "10♠".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Code returns a stable index in [0, 51] used for fingerprinting and save
// blobs: 4*(rank-2) + suit.
func (c Card) Code() uint8 {
	r := c.Rank
	if r < 2 {
		r = 2
	}
	if r > Ace {
		r = Ace
	}
	return uint8(r-2)*4 + uint8(c.Suit&3)
}

// FromCode is the inverse of Code.
func FromCode(code uint8) Card {
	if code > 51 {
		code = 51
	}
	return Card{Rank: Rank(code/4) + 2, Suit: Suit(code % 4)}
}

// ChipValue returns the base chip contribution of a card when scored:
// pip cards score their rank, face cards 10, aces 11.
func (c Card) ChipValue() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Jack:
		return 10
	default:
		return int(c.Rank)
	}
}
