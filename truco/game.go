package truco

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/MarcoSchenker/Lab-1-sub000/card"
)

// Game is a full match. All exported methods are safe for concurrent
// use; internally every mutation runs under one mutex so actions from
// different players serialize into a single total order.
type Game struct {
	mu sync.Mutex

	cfg   Config
	rng   *rand.Rand
	state MatchState

	teams   [2]*Team
	players []*Player
	byID    map[string]*Player

	roundNum int
	round    *Round
	history  []RoundSummary
	winner   *Team
	fault    error
}

// NewGame seats the roster and leaves the match in StateConfiguring.
// A config error returns nil; a roster that breaks seating invariants
// returns the match frozen in StateErrored so the hosting layer can
// still snapshot and report it.
func NewGame(cfg Config, playerIDs []string) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		state: StateConfiguring,
		byID:  make(map[string]*Player),
	}
	g.teams[0] = newTeam(1)
	g.teams[1] = newTeam(2)

	if err := g.seat(playerIDs); err != nil {
		g.state = StateErrored
		g.fault = err
		return g, err
	}
	return g, nil
}

// seat assigns players to teams by alternating seating order, so
// round order always interleaves the teams.
func (g *Game) seat(ids []string) error {
	if len(ids) != g.cfg.Mode.PlayerCount() {
		return invariant("mode %s needs %d players, got %d",
			g.cfg.Mode, g.cfg.Mode.PlayerCount(), len(ids))
	}
	for i, id := range ids {
		if id == "" {
			return invariant("empty player id at seat %d", i)
		}
		if _, dup := g.byID[id]; dup {
			return invariant("duplicate player id %q", id)
		}
		team := g.teams[i%2]
		p := &Player{id: id, team: team, seat: i, connected: true}
		team.players = append(team.players, p)
		g.players = append(g.players, p)
		g.byID[id] = p
	}
	return nil
}

// Start deals the first round and moves the match to StatePlaying.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateConfiguring:
	case StateErrored:
		return g.fault
	default:
		return fmt.Errorf("cannot start a %s match", g.state)
	}
	g.state = StatePlaying
	return g.startRoundLocked()
}

func (g *Game) startRoundLocked() error {
	g.roundNum++
	order := g.roundOrder(g.roundNum)
	deck := card.NewDeck(g.rng.Int63())
	deck.Shuffle()
	r, err := newRound(g.roundNum, order, deck, g.faltaStakeLocked)
	if err != nil {
		g.state = StateErrored
		g.fault = invariant("deal failed: %v", err)
		return g.fault
	}
	g.round = r
	return nil
}

// roundOrder rotates the seating so the mano advances one seat per
// round.
func (g *Game) roundOrder(roundNum int) []*Player {
	n := len(g.players)
	shift := (roundNum - 1) % n
	order := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		order = append(order, g.players[(shift+i)%n])
	}
	return order
}

// faltaStakeLocked is the falta envido payoff: what the highest-scoring
// team still needs to reach the target, floored at one.
func (g *Game) faltaStakeLocked() int {
	top := g.teams[0].score
	if g.teams[1].score > top {
		top = g.teams[1].score
	}
	stake := g.cfg.TargetScore - top
	if stake < 1 {
		stake = 1
	}
	return stake
}

// Apply commits one player action. On a rule violation the state is
// unchanged and the error carries a Reason; on success the result says
// what advanced, including round and match completion.
func (g *Game) Apply(playerID string, act Action) (*StepResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateConfiguring:
		return nil, ErrMatchNotStarted
	case StateFinished:
		return nil, reject(ReasonMatchOver, "match already finished")
	case StateErrored:
		return nil, g.fault
	}
	p, ok := g.byID[playerID]
	if !ok {
		return nil, reject(ReasonUnknownPlayer, "no player %q in this match", playerID)
	}

	res := &StepResult{RoundNumber: g.roundNum}
	r := g.round

	var err error
	switch act.Type {
	case ActionPlayCard:
		var hand *handResult
		hand, err = r.playCard(p, act.CardID)
		res.Event = "card_played"
		if err == nil && hand != nil && !r.resolved {
			res.Event = "hand_resolved"
		}
	case ActionCallEnvido:
		err = r.callEnvido(p, act.Envido)
		res.Event = "envido_called"
	case ActionCallTruco:
		err = r.callTruco(p, act.Truco)
		res.Event = "truco_called"
	case ActionRespond:
		res.Event, err = r.respond(p, act.Response)
	case ActionDeclarePoints:
		err = r.declarePoints(p, act.Points)
		res.Event = "points_declared"
	case ActionSonBuenas:
		err = r.sonBuenas(p)
		res.Event = "son_buenas"
	case ActionConcede:
		err = r.concede(p)
		res.Event = "conceded"
	default:
		err = reject(ReasonUnknownAction, "unknown action type %d", act.Type)
	}
	if err != nil {
		return nil, err
	}

	g.creditEnvidoLocked(r)
	if g.state == StateFinished {
		res.MatchFinished = true
		res.WinningTeam = g.winner.id
		s := r.summary()
		res.Summary = &s
		g.history = append(g.history, s)
		return res, nil
	}
	if r.resolved {
		if err := g.settleRoundLocked(r, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// creditEnvidoLocked scores a settled envido exactly once, the moment
// it resolves. Reaching the target here ends the match mid-round.
func (g *Game) creditEnvidoLocked(r *Round) {
	if r.envidoWinner == nil || r.envidoCredited {
		return
	}
	r.envidoCredited = true
	r.envidoWinner.addScore(r.envidoPoints)
	if r.envidoWinner.score >= g.cfg.TargetScore {
		g.finishLocked(r.envidoWinner)
	}
}

func (g *Game) settleRoundLocked(r *Round, res *StepResult) error {
	r.winner.addScore(r.trucoPoints)
	s := r.summary()
	g.history = append(g.history, s)
	res.Summary = &s
	res.RoundFinished = true
	if r.winner.score >= g.cfg.TargetScore {
		g.finishLocked(r.winner)
		res.MatchFinished = true
		res.WinningTeam = g.winner.id
		return nil
	}
	return g.startRoundLocked()
}

func (g *Game) finishLocked(winner *Team) {
	g.state = StateFinished
	g.winner = winner
}

// State reports the lifecycle state.
func (g *Game) State() MatchState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Scores returns the cumulative score per team id.
func (g *Game) Scores() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return map[string]int{
		g.teams[0].id: g.teams[0].score,
		g.teams[1].id: g.teams[1].score,
	}
}

// Winner is the winning team id, empty while the match runs.
func (g *Game) Winner() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.winner == nil {
		return ""
	}
	return g.winner.id
}

// Code is the external match identifier from the config.
func (g *Game) Code() string { return g.cfg.Code }

// SetConnected flags a player's link state for snapshots. Unknown ids
// are ignored.
func (g *Game) SetConnected(playerID string, connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.byID[playerID]; ok {
		p.setConnected(connected)
	}
}

// Players lists the roster ids in seating order.
func (g *Game) Players() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.players))
	for i, p := range g.players {
		out[i] = p.id
	}
	return out
}
