package truco

import (
	"errors"
	"fmt"
)

var (
	ErrMatchNotStarted = errors.New("match has not started")
	ErrMatchEnded      = errors.New("match already ended")
	ErrMatchErrored    = errors.New("match is in errored state")
)

// Reason is a stable machine-readable rejection code.
type Reason string

const (
	ReasonOutOfTurn         Reason = "out_of_turn"
	ReasonCardNotInHand     Reason = "card_not_in_hand"
	ReasonCantoPending      Reason = "canto_pending"
	ReasonIllegalEscalation Reason = "illegal_escalation"
	ReasonNothingPending    Reason = "nothing_pending"
	ReasonEnvidoClosed      Reason = "envido_closed"
	ReasonNotPie            Reason = "not_pie"
	ReasonAlreadySpoken     Reason = "already_spoken"
	ReasonSonBuenasIllegal  Reason = "son_buenas_illegal"
	ReasonBadDeclaration    Reason = "bad_declaration"
	ReasonNotDeclaring      Reason = "not_declaring"
	ReasonUnknownPlayer     Reason = "unknown_player"
	ReasonUnknownAction     Reason = "unknown_action"
	ReasonMatchOver         Reason = "match_over"
)

// RuleError rejects an action that violates game rules. The state is
// untouched when one is returned.
type RuleError struct {
	Code   Reason
	Detail string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule violation [%s]: %s", e.Code, e.Detail)
}

func reject(code Reason, format string, args ...any) error {
	return &RuleError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection code from err, or "" when err is not
// a rule violation.
func ReasonOf(err error) Reason {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// InvariantError reports internal state corruption. A match that
// produced one freezes in StateErrored.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Detail)
}

func invariant(format string, args ...any) error {
	return &InvariantError{Detail: fmt.Sprintf(format, args...)}
}
