package truco

import "fmt"

// Team groups half the roster and carries the cumulative match score.
type Team struct {
	id      string
	number  int
	players []*Player
	score   int
}

func newTeam(number int) *Team {
	return &Team{id: fmt.Sprintf("team%d", number), number: number}
}

func (t *Team) ID() string   { return t.id }
func (t *Team) Number() int  { return t.number }
func (t *Team) Score() int   { return t.score }

func (t *Team) Players() []*Player {
	out := make([]*Player, len(t.players))
	copy(out, t.players)
	return out
}

func (t *Team) addScore(pts int) {
	if pts < 0 {
		return
	}
	t.score += pts
}

func (t *Team) has(p *Player) bool {
	for _, m := range t.players {
		if m == p {
			return true
		}
	}
	return false
}
