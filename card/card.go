package card

import "fmt"

// Card is one card of the 40-card Spanish deck used by truco.
// Immutable once constructed: the strength and envido tables are fixed
// at deck-building time and never change afterwards.
type Card struct {
	id       uint8
	suit     Suit
	rank     uint8
	strength uint8
	envido   uint8
}

// Ranks are the ten valid ranks of the deck. 8s and 9s do not exist.
var Ranks = [10]uint8{1, 2, 3, 4, 5, 6, 7, 10, 11, 12}

func (c Card) ID() uint8   { return c.id }
func (c Card) Suit() Suit  { return c.suit }
func (c Card) Rank() uint8 { return c.rank }

// Strength is the card's fixed truco-comparison value, 1 (4s) to 14
// (ace of swords). Higher wins a trick.
func (c Card) Strength() uint8 { return c.strength }

// Envido is the card's value for envido tallies: face value for ranks
// up to 7, zero for the face cards 10/11/12.
func (c Card) Envido() uint8 { return c.envido }

func (c Card) String() string {
	return fmt.Sprintf("%d%s", c.rank, c.suit)
}

// strengthOf encodes the truco ladder. The four manilhas come first,
// then the shared tiers; aces and sevens outside the manilha suits are
// the "false" members of their tier.
func strengthOf(s Suit, rank uint8) uint8 {
	switch {
	case rank == 1 && s == Espada:
		return 14
	case rank == 1 && s == Basto:
		return 13
	case rank == 7 && s == Espada:
		return 12
	case rank == 7 && s == Oro:
		return 11
	}
	switch rank {
	case 3:
		return 10
	case 2:
		return 9
	case 1: // false aces (oro, copa)
		return 8
	case 12:
		return 7
	case 11:
		return 6
	case 10:
		return 5
	case 7: // false sevens (basto, copa)
		return 4
	case 6:
		return 3
	case 5:
		return 2
	case 4:
		return 1
	}
	return 0
}

func envidoOf(rank uint8) uint8 {
	if rank <= 7 {
		return rank
	}
	return 0
}
