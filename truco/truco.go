package truco

type trucoState byte

const (
	trucoNotSung trucoState = iota
	trucoPending
	trucoAccepted
	trucoDeclined
)

// trucoHandler tracks the round's stake ladder. The round value stays
// at one until a level is accepted; a declined level ends the round in
// favor of the calling team.
type trucoHandler struct {
	state      trucoState
	level      TrucoLevel
	callerTeam *Team
	responder  *Team

	// suspended marks the "envido goes first" window: the pending
	// truco waits for the interleaved envido to settle, with caller,
	// level and responder untouched.
	suspended bool

	winner *Team
	points int
}

func newTrucoHandler() *trucoHandler {
	return &trucoHandler{}
}

func trucoAcceptedValue(l TrucoLevel) int {
	switch l {
	case Truco:
		return 2
	case Retruco:
		return 3
	case ValeCuatro:
		return 4
	}
	return 1
}

func trucoDeclinedValue(l TrucoLevel) int {
	return trucoAcceptedValue(l) - 1
}

// call opens or raises the ladder. Raising is reserved for the team
// that did not call the current level, while it is pending or right
// after acceptance.
func (t *trucoHandler) call(p *Player, level TrucoLevel, other *Team) error {
	switch t.state {
	case trucoNotSung:
		if level != Truco {
			return reject(ReasonIllegalEscalation, "the ladder opens with TRUCO")
		}
	case trucoPending:
		if p.team != t.responder {
			return reject(ReasonIllegalEscalation, "only the responding team may raise")
		}
		if level != t.level+1 {
			return reject(ReasonIllegalEscalation, "%s must follow %s", level, t.level)
		}
	case trucoAccepted:
		if p.team == t.callerTeam {
			return reject(ReasonIllegalEscalation, "%s's team already owns %s", p.id, t.level)
		}
		if level != t.level+1 {
			return reject(ReasonIllegalEscalation, "%s must follow %s", level, t.level)
		}
	default:
		return reject(ReasonMatchOver, "round already decided")
	}
	t.level = level
	t.callerTeam = p.team
	t.responder = other
	t.state = trucoPending
	return nil
}

func (t *trucoHandler) accept() {
	t.state = trucoAccepted
}

func (t *trucoHandler) decline() {
	t.winner = t.callerTeam
	t.points = trucoDeclinedValue(t.level)
	t.state = trucoDeclined
}

// roundValue is what the round pays to whoever wins it on tricks.
func (t *trucoHandler) roundValue() int {
	if t.state == trucoAccepted {
		return trucoAcceptedValue(t.level)
	}
	return 1
}

func (t *trucoHandler) pending() bool {
	return t.state == trucoPending && !t.suspended
}
