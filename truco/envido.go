package truco

type envidoState byte

const (
	envidoNotSung envidoState = iota
	envidoPending
	envidoDeclaring
	envidoResolved
)

// declaration is one spoken envido value during the showdown. passed
// marks a "no supero" that did not take the lead.
type declaration struct {
	player *Player
	points int
	passed bool
}

// envidoHandler runs the point-bidding protocol of a single round: the
// escalation chain, the accept/decline response, and the declaration
// showdown in round order from the mano.
type envidoHandler struct {
	state     envidoState
	chain     []EnvidoLevel
	callers   []*Player
	caller    *Player
	responder *Team
	closed    bool

	declOrder []*Player
	declIdx   int
	decls     []declaration
	best      *declaration

	winner *Team
	points int
}

func newEnvidoHandler() *envidoHandler {
	return &envidoHandler{}
}

// legalNext reports whether level may extend the current chain.
// Envido may repeat once, real envido follows any number of envidos,
// falta envido terminates from anywhere.
func (e *envidoHandler) legalNext(level EnvidoLevel) bool {
	envidos, hasReal, hasFalta := 0, false, false
	for _, l := range e.chain {
		switch l {
		case Envido:
			envidos++
		case RealEnvido:
			hasReal = true
		case FaltaEnvido:
			hasFalta = true
		}
	}
	if hasFalta {
		return false
	}
	switch level {
	case Envido:
		return !hasReal && envidos < 2
	case RealEnvido:
		return !hasReal
	case FaltaEnvido:
		return true
	}
	return false
}

// call extends (or opens) the chain, leaving responder as the team
// that must now speak. Eligibility by seat is the round's concern;
// this validates only ladder legality and team turn.
func (e *envidoHandler) call(p *Player, level EnvidoLevel, responder *Team) error {
	switch e.state {
	case envidoNotSung:
		if e.closed {
			return reject(ReasonEnvidoClosed, "envido window has closed")
		}
	case envidoPending:
		if p.team != e.responder {
			return reject(ReasonIllegalEscalation, "only the responding team may raise")
		}
	default:
		return reject(ReasonEnvidoClosed, "envido already settled this round")
	}
	if !e.legalNext(level) {
		return reject(ReasonIllegalEscalation, "%s cannot follow the current chain", level)
	}
	e.chain = append(e.chain, level)
	e.callers = append(e.callers, p)
	e.caller = p
	e.responder = responder
	e.state = envidoPending
	return nil
}

// acceptedValue is what the chain pays once accepted. faltaTarget is
// the precomputed falta envido stake for this match moment.
func (e *envidoHandler) acceptedValue(faltaTarget int) int {
	return chainValue(e.chain, faltaTarget)
}

// declinedValue is what a rejected chain pays: the accepted value of
// everything before the final canto, floored at one.
func (e *envidoHandler) declinedValue(faltaTarget int) int {
	v := chainValue(e.chain[:len(e.chain)-1], faltaTarget)
	if v < 1 {
		v = 1
	}
	return v
}

func chainValue(chain []EnvidoLevel, faltaTarget int) int {
	total := 0
	for _, l := range chain {
		switch l {
		case Envido:
			total += 2
		case RealEnvido:
			total += 3
		case FaltaEnvido:
			return faltaTarget
		}
	}
	return total
}

// accept locks the stake and opens the declaration showdown in the
// given round order.
func (e *envidoHandler) accept(order []*Player, faltaTarget int) {
	e.points = e.acceptedValue(faltaTarget)
	e.declOrder = order
	e.declIdx = 0
	e.state = envidoDeclaring
	e.closed = true
}

// decline awards the chain minus its final canto to the caller's team.
func (e *envidoHandler) decline(faltaTarget int) {
	e.winner = e.caller.team
	e.points = e.declinedValue(faltaTarget)
	e.state = envidoResolved
	e.closed = true
}

func (e *envidoHandler) declTurn() *Player {
	if e.state != envidoDeclaring || e.declIdx >= len(e.declOrder) {
		return nil
	}
	return e.declOrder[e.declIdx]
}

// declare records p's spoken value. A value that does not beat the
// current best is a "no supero" and keeps the lead where it was. A
// negative value is an explicit pass, illegal for the first speaker.
func (e *envidoHandler) declare(p *Player, points int) error {
	if e.state != envidoDeclaring {
		return reject(ReasonNotDeclaring, "no envido declaration in progress")
	}
	if e.declTurn() != p {
		return reject(ReasonOutOfTurn, "it is not %s's turn to declare", p.id)
	}
	if points < 0 && e.best == nil {
		return reject(ReasonBadDeclaration, "the first speaker must declare a value")
	}
	d := declaration{player: p, points: points}
	if points < 0 || (e.best != nil && points <= e.best.points) {
		d.passed = true
	}
	e.decls = append(e.decls, d)
	if !d.passed {
		e.best = &e.decls[len(e.decls)-1]
	}
	e.declIdx++
	if e.declIdx >= len(e.declOrder) {
		e.resolve()
	}
	return nil
}

// sonBuenas concedes the showdown outright. Only legal for a team that
// does not hold the best declared value, on its own declaration turn.
func (e *envidoHandler) sonBuenas(p *Player) error {
	if e.state != envidoDeclaring {
		return reject(ReasonNotDeclaring, "no envido declaration in progress")
	}
	if e.declTurn() != p {
		return reject(ReasonOutOfTurn, "it is not %s's turn to speak", p.id)
	}
	if e.best == nil {
		return reject(ReasonSonBuenasIllegal, "nothing declared yet")
	}
	if e.best.player.team == p.team {
		return reject(ReasonSonBuenasIllegal, "%s's team holds the best value", p.id)
	}
	e.winner = e.best.player.team
	e.state = envidoResolved
	return nil
}

func (e *envidoHandler) resolve() {
	if e.best == nil {
		// unreachable: the first speaker always sets best
		e.best = &e.decls[0]
	}
	e.winner = e.best.player.team
	e.state = envidoResolved
}

func (e *envidoHandler) resolved() bool { return e.state == envidoResolved }
func (e *envidoHandler) pending() bool  { return e.state == envidoPending }
func (e *envidoHandler) declaring() bool {
	return e.state == envidoDeclaring
}
