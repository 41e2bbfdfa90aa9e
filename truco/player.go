package truco

import "github.com/MarcoSchenker/Lab-1-sub000/card"

// Player is one seated participant. All mutation happens under the
// owning Game's lock.
type Player struct {
	id        string
	team      *Team
	seat      int
	pie       bool
	connected bool

	hand   Hand
	played []card.Card
}

func (p *Player) ID() string       { return p.id }
func (p *Player) Team() *Team      { return p.team }
func (p *Player) Seat() int        { return p.seat }
func (p *Player) Pie() bool        { return p.pie }
func (p *Player) Connected() bool  { return p.connected }
func (p *Player) Hand() []card.Card {
	return p.hand.Cards()
}

func (p *Player) Played() []card.Card {
	out := make([]card.Card, len(p.played))
	copy(out, p.played)
	return out
}

func (p *Player) setConnected(v bool) { p.connected = v }

func (p *Player) dealt(cards []card.Card) {
	p.hand.Set(cards)
	p.played = p.played[:0]
}

// EnvidoPoints tallies the player's best envido over the three dealt
// cards, including any already on the table. Two or more of a suit
// score 20 plus the two highest envido values of that suit; otherwise
// the single best value.
func (p *Player) EnvidoPoints() int {
	all := append(p.hand.Cards(), p.played...)
	var bySuit [4][]uint8
	for _, c := range all {
		bySuit[c.Suit()] = append(bySuit[c.Suit()], c.Envido())
	}
	best := 0
	for _, vals := range bySuit {
		switch {
		case len(vals) >= 2:
			hi, second := 0, 0
			for _, v := range vals {
				if int(v) >= hi {
					second = hi
					hi = int(v)
				} else if int(v) > second {
					second = int(v)
				}
			}
			if s := 20 + hi + second; s > best {
				best = s
			}
		case len(vals) == 1:
			if int(vals[0]) > best {
				best = int(vals[0])
			}
		}
	}
	return best
}

// Hand is the ordered set of cards still held, at most three.
type Hand struct {
	cards []card.Card
}

func (h *Hand) Set(cards []card.Card) {
	h.cards = append(h.cards[:0], cards...)
}

func (h Hand) Cards() []card.Card {
	out := make([]card.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

func (h Hand) Size() int { return len(h.cards) }

func (h Hand) Contains(id uint8) bool {
	for _, c := range h.cards {
		if c.ID() == id {
			return true
		}
	}
	return false
}

// Remove takes the card with the given id out of the hand. It reports
// false and leaves the hand untouched when the card is not held.
func (h *Hand) Remove(id uint8) (card.Card, bool) {
	for i, c := range h.cards {
		if c.ID() == id {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return c, true
		}
	}
	return card.Card{}, false
}
