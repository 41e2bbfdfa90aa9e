package card

type Suit byte

const (
	Espada Suit = iota // swords
	Basto              // clubs
	Oro                // coins
	Copa               // cups
)

func (s Suit) String() string {
	switch s {
	case Espada:
		return "E"
	case Basto:
		return "B"
	case Oro:
		return "O"
	case Copa:
		return "C"
	}
	return "?"
}

func (s Suit) Name() string {
	switch s {
	case Espada:
		return "espada"
	case Basto:
		return "basto"
	case Oro:
		return "oro"
	case Copa:
		return "copa"
	}
	return "unknown"
}
