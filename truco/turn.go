package truco

import "github.com/MarcoSchenker/Lab-1-sub000/card"

// playedCard is one face-up card on the table for the current or a
// past hand.
type playedCard struct {
	player *Player
	card   card.Card
}

// handResult is one resolved trick. winner nil means parda; leader is
// the player who opens the next hand.
type handResult struct {
	winner *Team
	leader *Player
	plays  []playedCard
}

// turnHandler sequences card plays across the up-to-three hands of a
// round. It knows nothing about cantos; the round gates those before
// delegating here.
type turnHandler struct {
	order      []*Player
	leaderTeam *Team

	phase   RoundPhase
	current int
	leader  *Player
	plays   []playedCard
	hands   []handResult

	winner *Team
	done   bool
}

func newTurnHandler(order []*Player) *turnHandler {
	return &turnHandler{
		order:      order,
		leaderTeam: order[0].team,
		leader:     order[0],
		phase:      PhaseDealing,
	}
}

func (t *turnHandler) deal(d *card.Deck) error {
	for _, p := range t.order {
		cards, err := d.Deal(3)
		if err != nil {
			return err
		}
		p.dealt(cards)
	}
	t.phase = PhaseHandOne
	t.current = 0
	return nil
}

// currentPlayer is the player whose turn it is, nil once the round is
// decided.
func (t *turnHandler) currentPlayer() *Player {
	if t.done || t.phase == PhaseDealing || t.phase == PhaseResolved {
		return nil
	}
	return t.order[t.current]
}

// handNumber is 1-based; the hand currently in progress, or the last
// one once resolved.
func (t *turnHandler) handNumber() int {
	switch t.phase {
	case PhaseHandOne:
		return 1
	case PhaseHandTwo:
		return 2
	case PhaseHandThree:
		return 3
	}
	return len(t.hands)
}

func (t *turnHandler) firstHandDone() bool {
	return len(t.hands) >= 1
}

// playCard commits p's card to the table. Returns the resolved hand
// when this play closed one, nil otherwise.
func (t *turnHandler) playCard(p *Player, id uint8) (*handResult, error) {
	if t.done {
		return nil, reject(ReasonMatchOver, "round already decided")
	}
	if cur := t.currentPlayer(); cur != p {
		return nil, reject(ReasonOutOfTurn, "it is %s's turn, not %s's", cur.id, p.id)
	}
	c, ok := p.hand.Remove(id)
	if !ok {
		return nil, reject(ReasonCardNotInHand, "%s does not hold card %d", p.id, id)
	}
	p.played = append(p.played, c)
	t.plays = append(t.plays, playedCard{player: p, card: c})

	if len(t.plays) < len(t.order) {
		t.current = (t.current + 1) % len(t.order)
		return nil, nil
	}

	res := t.resolveHand()
	t.hands = append(t.hands, res)
	t.plays = nil
	t.maybeResolveRound()
	if !t.done {
		if res.winner != nil {
			t.leader = res.leader
		}
		t.current = t.indexOf(t.leader)
		t.phase++
	} else {
		t.phase = PhaseResolved
	}
	return &res, nil
}

// resolveHand decides the hand just completed. Highest strength wins;
// on a tie within one team the earliest card of that team wins; a
// cross-team tie is a parda, except in hand one where the round
// leader's team takes it when involved in the tie.
func (t *turnHandler) resolveHand() handResult {
	plays := make([]playedCard, len(t.plays))
	copy(plays, t.plays)

	var top uint8
	for _, pc := range plays {
		if pc.card.Strength() > top {
			top = pc.card.Strength()
		}
	}
	var tied []playedCard
	for _, pc := range plays {
		if pc.card.Strength() == top {
			tied = append(tied, pc)
		}
	}

	if len(tied) == 1 {
		return handResult{winner: tied[0].player.team, leader: tied[0].player, plays: plays}
	}

	oneTeam := true
	for _, pc := range tied[1:] {
		if pc.player.team != tied[0].player.team {
			oneTeam = false
			break
		}
	}
	if oneTeam {
		return handResult{winner: tied[0].player.team, leader: tied[0].player, plays: plays}
	}

	if len(t.hands) == 0 {
		for _, pc := range tied {
			if pc.player.team == t.leaderTeam {
				return handResult{winner: t.leaderTeam, leader: pc.player, plays: plays}
			}
		}
	}
	return handResult{plays: plays}
}

// maybeResolveRound checks the round after each resolved hand. Two
// non-parda wins take it; once any parda exists the first team with a
// non-parda win takes it; three pardas fall to the leader's team.
func (t *turnHandler) maybeResolveRound() {
	wins := map[*Team]int{}
	var firstWin *Team
	pardas := 0
	for _, h := range t.hands {
		if h.winner == nil {
			pardas++
			continue
		}
		wins[h.winner]++
		if firstWin == nil {
			firstWin = h.winner
		}
	}
	for team, n := range wins {
		if n >= 2 {
			t.winner = team
			t.done = true
			return
		}
	}
	if pardas > 0 && firstWin != nil {
		t.winner = firstWin
		t.done = true
		return
	}
	if pardas == 3 {
		t.winner = t.leaderTeam
		t.done = true
	}
}

func (t *turnHandler) indexOf(p *Player) int {
	for i, q := range t.order {
		if q == p {
			return i
		}
	}
	return 0
}
