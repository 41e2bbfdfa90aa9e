package truco

import "github.com/MarcoSchenker/Lab-1-sub000/card"

// Round is one deal: three cards each, up to three hands, one trick
// winner, and at most one envido settlement. All entry points assume
// the owning Game's lock is held.
type Round struct {
	number int
	order  []*Player
	leader *Player

	turn   *turnHandler
	envido *envidoHandler
	truco  *trucoHandler

	// falta yields the falta envido stake at settlement time.
	falta func() int

	winner        *Team
	trucoPoints   int
	envidoWinner  *Team
	envidoPoints  int
	envidoCredited bool
	concededBy    *Team
	resolved      bool
}

func newRound(number int, order []*Player, deck *card.Deck, falta func() int) (*Round, error) {
	r := &Round{
		number: number,
		order:  order,
		leader: order[0],
		turn:   newTurnHandler(order),
		envido: newEnvidoHandler(),
		truco:  newTrucoHandler(),
		falta:  falta,
	}
	if err := r.turn.deal(deck); err != nil {
		return nil, err
	}
	r.markPies()
	return r, nil
}

// markPies flags, per team, the player acting last in this round's
// order. In 1v1 both players are their team's pie.
func (r *Round) markPies() {
	for _, p := range r.order {
		p.pie = false
	}
	seen := map[*Team]*Player{}
	for _, p := range r.order {
		seen[p.team] = p
	}
	for _, p := range seen {
		p.pie = true
	}
}

func (r *Round) other(t *Team) *Team {
	for _, p := range r.order {
		if p.team != t {
			return p.team
		}
	}
	return nil
}

func (r *Round) cantoOpen() bool {
	return r.envido.pending() || r.envido.declaring() || r.truco.pending()
}

func (r *Round) playCard(p *Player, id uint8) (*handResult, error) {
	if r.cantoOpen() {
		return nil, reject(ReasonCantoPending, "a canto awaits response")
	}
	res, err := r.turn.playCard(p, id)
	if err != nil {
		return nil, err
	}
	if r.turn.done {
		r.finishOnTricks()
	}
	return res, nil
}

func (r *Round) finishOnTricks() {
	r.winner = r.turn.winner
	r.trucoPoints = r.truco.roundValue()
	r.resolved = true
}

// callEnvido opens or raises the envido chain. Opening is limited to
// the first hand before it completes, by the team pie (anyone in 1v1,
// anyone for falta envido); a pending truco admits an opening only by
// its responding team, suspending the truco until the envido settles.
func (r *Round) callEnvido(p *Player, level EnvidoLevel) error {
	if r.envido.declaring() {
		return reject(ReasonCantoPending, "envido declaration in progress")
	}
	opening := !r.envido.pending()
	if opening {
		if r.envido.closed {
			return reject(ReasonEnvidoClosed, "envido already settled this round")
		}
		if r.turn.firstHandDone() {
			return reject(ReasonEnvidoClosed, "envido closes with the first hand")
		}
		if r.truco.state == trucoPending {
			if p.team != r.truco.responder {
				return reject(ReasonCantoPending, "a truco canto awaits response")
			}
		} else if r.truco.state == trucoAccepted {
			return reject(ReasonEnvidoClosed, "envido cannot follow an accepted truco")
		}
	}
	if !r.maySingEnvido(p, level) {
		return reject(ReasonNotPie, "%s is not the pie of their team", p.id)
	}
	if err := r.envido.call(p, level, r.other(p.team)); err != nil {
		return err
	}
	if opening && r.truco.state == trucoPending {
		r.truco.suspended = true
	}
	return nil
}

// maySingEnvido gates both openings and raises: the team pie, anyone
// in 1v1, or anyone for falta envido. Once a team's pie has sung in
// the current chain, any teammate may raise on their behalf.
func (r *Round) maySingEnvido(p *Player, level EnvidoLevel) bool {
	if level == FaltaEnvido {
		return true
	}
	if len(p.team.players) == 1 {
		return true
	}
	if p.pie {
		return true
	}
	for _, c := range r.envido.callers {
		if c.team == p.team && c.pie {
			return true
		}
	}
	return false
}

// callTruco opens or raises the stake ladder. An opening call belongs
// to the player whose turn it is; a raise after acceptance likewise,
// while a raise of a pending level may come from anyone on the
// responding team.
func (r *Round) callTruco(p *Player, level TrucoLevel) error {
	if r.envido.pending() || r.envido.declaring() {
		return reject(ReasonCantoPending, "an envido canto awaits response")
	}
	if r.truco.suspended {
		return reject(ReasonCantoPending, "truco is suspended for envido")
	}
	if r.truco.state == trucoNotSung || r.truco.state == trucoAccepted {
		if cur := r.turn.currentPlayer(); cur != p {
			return reject(ReasonOutOfTurn, "truco can only be sung on %s's own turn", p.id)
		}
	}
	return r.truco.call(p, level, r.other(p.team))
}

func (r *Round) respond(p *Player, resp Response) (string, error) {
	if resp != Quiero && resp != NoQuiero {
		return "", reject(ReasonUnknownAction, "unknown response")
	}
	switch {
	case r.envido.pending():
		if p.team != r.envido.responder {
			return "", reject(ReasonOutOfTurn, "%s's team is not answering the envido", p.id)
		}
		if resp == Quiero {
			r.envido.accept(r.order, r.falta())
			return "envido_accepted", nil
		}
		r.envido.decline(r.falta())
		r.settleEnvido()
		return "envido_declined", nil
	case r.envido.declaring():
		return "", reject(ReasonCantoPending, "envido declaration in progress")
	case r.truco.pending():
		if p.team != r.truco.responder {
			return "", reject(ReasonOutOfTurn, "%s's team is not answering the truco", p.id)
		}
		if resp == Quiero {
			r.truco.accept()
			r.envido.closed = true
			return "truco_accepted", nil
		}
		r.truco.decline()
		r.winner = r.truco.winner
		r.trucoPoints = r.truco.points
		r.resolved = true
		return "truco_declined", nil
	}
	return "", reject(ReasonNothingPending, "nothing awaits a response")
}

func (r *Round) declarePoints(p *Player, points int) error {
	if err := r.envido.declare(p, points); err != nil {
		return err
	}
	if r.envido.resolved() {
		r.settleEnvido()
	}
	return nil
}

func (r *Round) sonBuenas(p *Player) error {
	if err := r.envido.sonBuenas(p); err != nil {
		return err
	}
	r.settleEnvido()
	return nil
}

// settleEnvido records the award and lifts an envido-first suspension.
func (r *Round) settleEnvido() {
	r.envidoWinner = r.envido.winner
	r.envidoPoints = r.envido.points
	r.truco.suspended = false
}

// concede ends the round for p's team. The stake depends on the truco
// state: one point untouched, the decline value of a pending level, or
// the full accepted value.
func (r *Round) concede(p *Player) error {
	if r.envido.pending() || r.envido.declaring() {
		return reject(ReasonCantoPending, "an envido canto awaits response")
	}
	winner := r.other(p.team)
	switch r.truco.state {
	case trucoNotSung:
		r.trucoPoints = 1
	case trucoPending:
		r.trucoPoints = trucoDeclinedValue(r.truco.level)
	case trucoAccepted:
		r.trucoPoints = trucoAcceptedValue(r.truco.level)
	default:
		return reject(ReasonMatchOver, "round already decided")
	}
	r.winner = winner
	r.concededBy = p.team
	r.resolved = true
	return nil
}

func (r *Round) summary() RoundSummary {
	s := RoundSummary{
		Number:       r.number,
		TrucoPoints:  r.trucoPoints,
		EnvidoPoints: r.envidoPoints,
	}
	if r.winner != nil {
		s.WinnerTeam = r.winner.id
	}
	if r.envidoWinner != nil {
		s.EnvidoTeam = r.envidoWinner.id
	}
	for _, h := range r.turn.hands {
		out := HandOutcome{}
		if h.winner != nil {
			out.Winner = h.winner.id
		}
		s.Hands = append(s.Hands, out)
	}
	return s
}
