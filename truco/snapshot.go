package truco

// CardSnapshot is one card as a client sees it.
type CardSnapshot struct {
	ID    uint8  `json:"id"`
	Label string `json:"label"`
}

// PlayerSnapshot is one seat. Hand is populated only for the viewer's
// own seat (or everywhere once the match is over); other seats expose
// HandCount alone. EnvidoPoints is -1 when hidden.
type PlayerSnapshot struct {
	ID           string         `json:"id"`
	TeamID       string         `json:"team_id"`
	Seat         int            `json:"seat"`
	Pie          bool           `json:"pie"`
	Connected    bool           `json:"connected"`
	HandCount    int            `json:"hand_count"`
	Hand         []CardSnapshot `json:"hand,omitempty"`
	Played       []CardSnapshot `json:"played"`
	EnvidoPoints int            `json:"envido_points"`
}

// TeamSnapshot is one side with its cumulative score.
type TeamSnapshot struct {
	ID      string   `json:"id"`
	Number  int      `json:"number"`
	Score   int      `json:"score"`
	Players []string `json:"players"`
}

// PlaySnapshot is one face-up card of the hand in progress.
type PlaySnapshot struct {
	Player string       `json:"player"`
	Card   CardSnapshot `json:"card"`
}

// PendingSnapshot describes the open canto, if any. Kind is "envido",
// "envido_declaration", "truco" or empty.
type PendingSnapshot struct {
	Kind           string   `json:"kind"`
	Level          string   `json:"level,omitempty"`
	CallerTeam     string   `json:"caller_team,omitempty"`
	ResponderTeam  string   `json:"responder_team,omitempty"`
	DeclareTurn    string   `json:"declare_turn,omitempty"`
	BestValue      int      `json:"best_value,omitempty"`
	EnvidoChain    []string `json:"envido_chain,omitempty"`
	TrucoSuspended bool     `json:"truco_suspended,omitempty"`
}

// Snapshot is the full observable match state at one instant. A given
// game state always yields the same snapshot for the same viewer.
type Snapshot struct {
	Code        string           `json:"code"`
	State       string           `json:"state"`
	Mode        string           `json:"mode"`
	TargetScore int              `json:"target_score"`
	Teams       []TeamSnapshot   `json:"teams"`
	Round       int              `json:"round"`
	Phase       string           `json:"phase"`
	Hand        int              `json:"hand"`
	TurnPlayer  string           `json:"turn_player,omitempty"`
	Leader      string           `json:"leader,omitempty"`
	TrucoLevel  string           `json:"truco_level,omitempty"`
	TrucoValue  int              `json:"truco_value"`
	Table       []PlaySnapshot   `json:"table"`
	HandResults []HandOutcome    `json:"hand_results"`
	Pending     PendingSnapshot  `json:"pending"`
	Players     []PlayerSnapshot `json:"players"`
	History     []RoundSummary   `json:"history"`
	WinnerTeam  string           `json:"winner_team,omitempty"`
	Fault       string           `json:"fault,omitempty"`
}

// Snapshot renders the omniscient view, hands included. Meant for
// persistence and diagnostics, never for clients.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked("", true)
}

// SnapshotFor renders the match as viewerID may see it: every hand but
// their own is reduced to a count until the match finishes.
func (g *Game) SnapshotFor(viewerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(viewerID, g.state == StateFinished)
}

func (g *Game) snapshotLocked(viewerID string, omniscient bool) Snapshot {
	s := Snapshot{
		Code:        g.cfg.Code,
		State:       g.state.String(),
		Mode:        g.cfg.Mode.String(),
		TargetScore: g.cfg.TargetScore,
		Round:       g.roundNum,
		Table:       []PlaySnapshot{},
		HandResults: []HandOutcome{},
		History:     append([]RoundSummary{}, g.history...),
	}
	for _, t := range g.teams {
		ts := TeamSnapshot{ID: t.id, Number: t.number, Score: t.score}
		for _, p := range t.players {
			ts.Players = append(ts.Players, p.id)
		}
		s.Teams = append(s.Teams, ts)
	}
	if g.winner != nil {
		s.WinnerTeam = g.winner.id
	}
	if g.fault != nil {
		s.Fault = g.fault.Error()
	}

	r := g.round
	if r == nil {
		for _, p := range g.players {
			s.Players = append(s.Players, snapPlayer(p, omniscient || p.id == viewerID))
		}
		return s
	}

	s.Phase = r.turn.phase.String()
	s.Hand = r.turn.handNumber()
	s.Leader = r.leader.id
	if cur := r.turn.currentPlayer(); cur != nil && !r.cantoOpen() {
		s.TurnPlayer = cur.id
	}
	if r.truco.state == trucoAccepted || r.truco.state == trucoPending {
		s.TrucoLevel = r.truco.level.String()
	}
	s.TrucoValue = r.truco.roundValue()
	for _, pc := range r.turn.plays {
		s.Table = append(s.Table, PlaySnapshot{
			Player: pc.player.id,
			Card:   CardSnapshot{ID: pc.card.ID(), Label: pc.card.String()},
		})
	}
	for _, h := range r.turn.hands {
		out := HandOutcome{}
		if h.winner != nil {
			out.Winner = h.winner.id
		}
		s.HandResults = append(s.HandResults, out)
	}
	s.Pending = snapPending(r)
	for _, p := range r.order {
		s.Players = append(s.Players, snapPlayer(p, omniscient || p.id == viewerID))
	}
	return s
}

func snapPending(r *Round) PendingSnapshot {
	switch {
	case r.envido.pending():
		ps := PendingSnapshot{
			Kind:           "envido",
			Level:          r.envido.chain[len(r.envido.chain)-1].String(),
			CallerTeam:     r.envido.caller.team.id,
			ResponderTeam:  r.envido.responder.id,
			TrucoSuspended: r.truco.suspended,
		}
		for _, l := range r.envido.chain {
			ps.EnvidoChain = append(ps.EnvidoChain, l.String())
		}
		return ps
	case r.envido.declaring():
		ps := PendingSnapshot{
			Kind:           "envido_declaration",
			TrucoSuspended: r.truco.suspended,
		}
		if t := r.envido.declTurn(); t != nil {
			ps.DeclareTurn = t.id
		}
		if r.envido.best != nil {
			ps.BestValue = r.envido.best.points
		}
		return ps
	case r.truco.pending():
		return PendingSnapshot{
			Kind:          "truco",
			Level:         r.truco.level.String(),
			CallerTeam:    r.truco.callerTeam.id,
			ResponderTeam: r.truco.responder.id,
		}
	}
	return PendingSnapshot{}
}

func snapPlayer(p *Player, showHand bool) PlayerSnapshot {
	ps := PlayerSnapshot{
		ID:           p.id,
		TeamID:       p.team.id,
		Seat:         p.seat,
		Pie:          p.pie,
		Connected:    p.connected,
		HandCount:    p.hand.Size(),
		Played:       []CardSnapshot{},
		EnvidoPoints: -1,
	}
	for _, c := range p.played {
		ps.Played = append(ps.Played, CardSnapshot{ID: c.ID(), Label: c.String()})
	}
	if showHand {
		for _, c := range p.hand.Cards() {
			ps.Hand = append(ps.Hand, CardSnapshot{ID: c.ID(), Label: c.String()})
		}
		ps.EnvidoPoints = p.EnvidoPoints()
	}
	return ps
}
