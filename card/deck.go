package card

import (
	"errors"
	"math/rand"
	"time"
)

// DeckSize is the number of cards in a full truco deck.
const DeckSize = 40

var ErrNotEnoughCards = errors.New("not enough cards in deck")

// fullDeck holds the 40 cards in enumeration order (suit-major). Card
// IDs are the positions in this table, so IDs are stable across deals.
var fullDeck = buildFullDeck()

func buildFullDeck() [DeckSize]Card {
	var cards [DeckSize]Card
	i := 0
	for s := Espada; s <= Copa; s++ {
		for _, rank := range Ranks {
			cards[i] = Card{
				id:       uint8(i),
				suit:     s,
				rank:     rank,
				strength: strengthOf(s, rank),
				envido:   envidoOf(rank),
			}
			i++
		}
	}
	return cards
}

// ByID resolves a card id (0..39) back to its card value.
func ByID(id uint8) (Card, bool) {
	if int(id) >= DeckSize {
		return Card{}, false
	}
	return fullDeck[id], true
}

// Find looks a card up by suit and rank. It reports false for ranks
// outside the Spanish deck.
func Find(s Suit, rank uint8) (Card, bool) {
	for _, c := range fullDeck {
		if c.suit == s && c.rank == rank {
			return c, true
		}
	}
	return Card{}, false
}

// Deck is a shuffleable pile of the 40 truco cards.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds a full deck. Seed 0 means time-based shuffling.
func NewDeck(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Deck{
		cards: make([]Card, DeckSize),
		rng:   rand.New(rand.NewSource(seed)),
	}
	copy(d.cards, fullDeck[:])
	return d
}

func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the first n cards. Asking for more cards
// than remain fails as a whole: no cards are removed.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, ErrNotEnoughCards
	}
	dealt := make([]Card, n)
	copy(dealt, d.cards[:n])
	d.cards = d.cards[n:]
	return dealt, nil
}

func (d *Deck) Remaining() int { return len(d.cards) }
