// Package codec defines the JSON envelopes exchanged with clients and
// the mapping between wire action names and engine actions.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

// ClientEnvelope is one message from a client. Type selects the
// payload field that matters.
type ClientEnvelope struct {
	Type   string         `json:"type"`
	Action *ActionPayload `json:"action,omitempty"`
}

// Client envelope types.
const (
	ClientAction   = "action"
	ClientSnapshot = "snapshot"
	ClientLeave    = "leave"
)

// ActionPayload names a move the way clients spell it.
type ActionPayload struct {
	Kind     string `json:"kind"`
	CardID   uint8  `json:"card_id,omitempty"`
	Level    string `json:"level,omitempty"`
	Response string `json:"response,omitempty"`
	Points   int    `json:"points"`
}

// ServerEnvelope is one message to a client. Exactly one of Snapshot
// and Error is set; Event labels what just happened.
type ServerEnvelope struct {
	MatchCode string          `json:"match_code"`
	Seq       uint64          `json:"seq"`
	TsMs      int64           `json:"ts_ms"`
	Event     string          `json:"event"`
	Snapshot  *truco.Snapshot `json:"snapshot,omitempty"`
	Error     *ErrorPayload   `json:"error,omitempty"`
}

type ErrorPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// SnapshotEnvelope wraps a redacted snapshot for one viewer.
func SnapshotEnvelope(code string, seq uint64, event string, snap truco.Snapshot) ServerEnvelope {
	return ServerEnvelope{
		MatchCode: code,
		Seq:       seq,
		TsMs:      time.Now().UnixMilli(),
		Event:     event,
		Snapshot:  &snap,
	}
}

// ErrorEnvelope wraps a rejection. Rule violations carry their reason
// code; anything else maps to "internal".
func ErrorEnvelope(code string, seq uint64, err error) ServerEnvelope {
	reason := string(truco.ReasonOf(err))
	if reason == "" {
		reason = "internal"
	}
	return ServerEnvelope{
		MatchCode: code,
		Seq:       seq,
		TsMs:      time.Now().UnixMilli(),
		Event:     "error",
		Error:     &ErrorPayload{Reason: reason, Message: err.Error()},
	}
}

func Marshal(env ServerEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeAction turns a wire payload into an engine action.
func DecodeAction(p *ActionPayload) (truco.Action, error) {
	if p == nil {
		return truco.Action{}, fmt.Errorf("action payload is required")
	}
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "play_card":
		return truco.Action{Type: truco.ActionPlayCard, CardID: p.CardID}, nil
	case "call_envido":
		level, err := envidoLevel(p.Level)
		if err != nil {
			return truco.Action{}, err
		}
		return truco.Action{Type: truco.ActionCallEnvido, Envido: level}, nil
	case "call_truco":
		level, err := trucoLevel(p.Level)
		if err != nil {
			return truco.Action{}, err
		}
		return truco.Action{Type: truco.ActionCallTruco, Truco: level}, nil
	case "respond":
		resp, err := response(p.Response)
		if err != nil {
			return truco.Action{}, err
		}
		return truco.Action{Type: truco.ActionRespond, Response: resp}, nil
	case "declare_points":
		return truco.Action{Type: truco.ActionDeclarePoints, Points: p.Points}, nil
	case "son_buenas":
		return truco.Action{Type: truco.ActionSonBuenas}, nil
	case "concede":
		return truco.Action{Type: truco.ActionConcede}, nil
	}
	return truco.Action{}, fmt.Errorf("unknown action kind %q", p.Kind)
}

func envidoLevel(s string) (truco.EnvidoLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENVIDO":
		return truco.Envido, nil
	case "REAL_ENVIDO":
		return truco.RealEnvido, nil
	case "FALTA_ENVIDO":
		return truco.FaltaEnvido, nil
	}
	return 0, fmt.Errorf("unknown envido level %q", s)
}

func trucoLevel(s string) (truco.TrucoLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUCO":
		return truco.Truco, nil
	case "RETRUCO":
		return truco.Retruco, nil
	case "VALE_CUATRO":
		return truco.ValeCuatro, nil
	}
	return 0, fmt.Errorf("unknown truco level %q", s)
}

func response(s string) (truco.Response, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QUIERO":
		return truco.Quiero, nil
	case "NO_QUIERO":
		return truco.NoQuiero, nil
	}
	return 0, fmt.Errorf("unknown response %q", s)
}
