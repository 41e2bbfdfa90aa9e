// Package room hosts one running match behind an actor. All mutations
// flow through a single event queue so concurrent websocket clients can
// never interleave inside the engine.
package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MarcoSchenker/Lab-1-sub000/internal/codec"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/ledger"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/metrics"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/notify"
	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

// Room wraps a match engine with an actor loop.
type Room struct {
	Code string

	mu       sync.RWMutex
	game     *truco.Game
	online   map[string]bool // playerID -> has an open connection
	lastSeen map[string]time.Time
	started    bool
	closed     bool
	stopOnce   sync.Once
	finishOnce sync.Once

	events chan Event
	done   chan struct{}

	serverSeq uint64

	// Callback to deliver envelopes to a player's connection.
	broadcast func(playerID string, data []byte)
	ledger    ledger.Service
	observer  notify.Observer

	emptySince time.Time
}

// Event types for the actor message queue
type EventType int

const (
	EventJoin EventType = iota
	EventAction
	EventConnLost
	EventConnResume
	EventLeave
	EventClose
)

// Event represents a message to the room actor
type Event struct {
	Type      EventType
	PlayerID  string
	Action    truco.Action
	Timestamp time.Time
	Response  chan error
}

var ErrRoomClosed = errors.New("room closed")

const offlineConcedeTTL = 2 * time.Minute

// New creates a room and starts its actor. The roster is fixed up front;
// players join by connecting, and the match starts once everyone has
// joined at least once.
func New(
	cfg truco.Config,
	playerIDs []string,
	broadcastFn func(playerID string, data []byte),
	ledgerService ledger.Service,
	observer notify.Observer,
) (*Room, error) {
	game, err := truco.NewGame(cfg, playerIDs)
	if err != nil {
		return nil, err
	}

	r := &Room{
		Code:       cfg.Code,
		game:       game,
		online:     make(map[string]bool, len(playerIDs)),
		lastSeen:   make(map[string]time.Time, len(playerIDs)),
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		broadcast:  broadcastFn,
		ledger:     ledgerService,
		observer:   observer,
		emptySince: time.Now(),
	}

	go r.run()

	log.Printf("[Room %s] Created (mode=%s, target=%d, players=%d)",
		r.Code, cfg.Mode, cfg.TargetScore, len(playerIDs))
	return r, nil
}

// run is the main actor loop
func (r *Room) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-r.events:
			err := r.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			r.tick()
		case <-r.done:
			log.Printf("[Room %s] Actor stopped", r.Code)
			return
		}
	}
}

// handleEvent processes a single event
func (r *Room) handleEvent(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed && e.Type != EventClose {
		return ErrRoomClosed
	}

	switch e.Type {
	case EventJoin:
		return r.handleJoin(e.PlayerID, e.Timestamp)
	case EventAction:
		return r.handleAction(e.PlayerID, e.Action)
	case EventConnLost:
		return r.handleConnLost(e.PlayerID, e.Timestamp)
	case EventConnResume:
		return r.handleJoin(e.PlayerID, e.Timestamp)
	case EventLeave:
		return r.handleLeave(e.PlayerID)
	case EventClose:
		r.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (r *Room) handleJoin(playerID string, ts time.Time) error {
	if !r.inRoster(playerID) {
		return fmt.Errorf("player %q is not part of this match", playerID)
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	first := !r.online[playerID] && r.lastSeen[playerID].IsZero()
	r.online[playerID] = true
	r.lastSeen[playerID] = ts
	r.game.SetConnected(playerID, true)
	r.updateEmptySinceLocked(ts)
	if first {
		log.Printf("[Room %s] Player %s joined", r.Code, playerID)
	} else {
		log.Printf("[Room %s] Player %s reconnected", r.Code, playerID)
	}

	r.tryStartLocked()
	r.sendSnapshot(playerID, "snapshot")
	return nil
}

// tryStartLocked starts the match once every roster player has connected
// at least once.
func (r *Room) tryStartLocked() {
	if r.started {
		return
	}
	for _, id := range r.game.Players() {
		if r.lastSeen[id].IsZero() {
			return
		}
	}
	if err := r.game.Start(); err != nil {
		log.Printf("[Room %s] Start failed: %v", r.Code, err)
		return
	}
	r.started = true
	metrics.MatchesStarted.Inc()
	log.Printf("[Room %s] Match started", r.Code)
	r.broadcastState("match_started")
}

func (r *Room) handleAction(playerID string, act truco.Action) error {
	res, err := r.game.Apply(playerID, act)
	if err != nil {
		if reason := truco.ReasonOf(err); reason != "" {
			metrics.ActionsRejected.WithLabelValues(string(reason)).Inc()
		}
		// Rule violations go back to the offending client only; the
		// shared state did not move.
		r.sendError(playerID, err)
		return err
	}

	metrics.ActionsApplied.WithLabelValues(res.Event).Inc()
	log.Printf("[Room %s] Player %s -> %s (round %d)", r.Code, playerID, res.Event, res.RoundNumber)

	seq := r.broadcastState(res.Event)
	r.appendLedgerAction(seq, playerID, res.Event)
	r.dispatchObserver(seq, res.Event)

	if res.RoundFinished || res.MatchFinished {
		metrics.RoundsPlayed.Inc()
	}
	if res.MatchFinished {
		r.finishOnce.Do(func() { r.handleMatchEnd(res) })
	}
	return nil
}

func (r *Room) handleMatchEnd(res *truco.StepResult) {
	scores := r.game.Scores()
	snap := r.game.Snapshot()
	log.Printf("[Room %s] Match finished, winner=%s scores=%v", r.Code, res.WinningTeam, scores)
	metrics.MatchesFinished.WithLabelValues(snap.Mode).Inc()

	if r.ledger != nil {
		rec := ledger.ResultRecord{
			MatchCode:   r.Code,
			Mode:        snap.Mode,
			TargetScore: snap.TargetScore,
			WinnerTeam:  res.WinningTeam,
			Scores:      scores,
			History:     snap.History,
			FinishedAt:  time.Now().UTC(),
		}
		go r.ledger.SaveResult(rec)
	}
	if r.observer != nil {
		winner := res.WinningTeam
		obs := r.observer
		code := r.Code
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[Room %s] observer panic: %v", code, rec)
				}
			}()
			obs.OnMatchFinished(code, winner, scores)
		}()
	}
}

func (r *Room) handleConnLost(playerID string, ts time.Time) error {
	if !r.inRoster(playerID) {
		return nil
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	r.online[playerID] = false
	r.lastSeen[playerID] = ts
	r.game.SetConnected(playerID, false)
	r.updateEmptySinceLocked(ts)
	log.Printf("[Room %s] Player %s connection lost", r.Code, playerID)
	r.broadcastState("player_disconnected")
	return nil
}

// handleLeave is an explicit abandon: the player concedes the round and
// is marked offline.
func (r *Room) handleLeave(playerID string) error {
	if !r.inRoster(playerID) {
		return nil
	}
	if r.game.State() == truco.StatePlaying {
		if err := r.handleAction(playerID, truco.Action{Type: truco.ActionConcede}); err != nil {
			log.Printf("[Room %s] concede on leave failed for %s: %v", r.Code, playerID, err)
		}
	}
	return r.handleConnLost(playerID, time.Now())
}

func (r *Room) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.concedeAbandoned(time.Now())
}

// concedeAbandoned folds the round for players who have been offline
// past the grace window while the match is live. It keeps the remaining
// players from being stuck waiting on a dead connection.
func (r *Room) concedeAbandoned(now time.Time) {
	if r.game.State() != truco.StatePlaying {
		return
	}
	for _, id := range r.game.Players() {
		if r.online[id] {
			continue
		}
		seen := r.lastSeen[id]
		if seen.IsZero() || now.Sub(seen) < offlineConcedeTTL {
			continue
		}
		// Throttle retries when the engine refuses (canto pending).
		r.lastSeen[id] = now
		if err := r.handleAction(id, truco.Action{Type: truco.ActionConcede}); err != nil {
			continue
		}
		log.Printf("[Room %s] Auto-conceded for offline player %s after %s", r.Code, id, offlineConcedeTTL)
		if r.game.State() != truco.StatePlaying {
			return
		}
	}
}

// SubmitEvent sends an event to the actor and waits for the outcome.
func (r *Room) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrRoomClosed
	}

	select {
	case r.events <- e:
	case <-r.done:
		return ErrRoomClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Stop shuts down the room actor
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	r.closed = true
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

func (r *Room) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// IsIdleFor reports whether no player has been connected for at least ttl.
func (r *Room) IsIdleFor(ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return true
	}
	for _, on := range r.online {
		if on {
			return false
		}
	}
	if r.emptySince.IsZero() {
		return false
	}
	return time.Since(r.emptySince) >= ttl
}

// Snapshot returns the omniscient match state.
func (r *Room) Snapshot() truco.Snapshot {
	return r.game.Snapshot()
}

// SnapshotFor returns the match state redacted for one viewer.
func (r *Room) SnapshotFor(viewerID string) truco.Snapshot {
	return r.game.SnapshotFor(viewerID)
}

// Players lists the roster in seating order.
func (r *Room) Players() []string {
	return r.game.Players()
}

func (r *Room) State() truco.MatchState {
	return r.game.State()
}

func (r *Room) inRoster(playerID string) bool {
	for _, id := range r.game.Players() {
		if id == playerID {
			return true
		}
	}
	return false
}

func (r *Room) updateEmptySinceLocked(now time.Time) {
	for _, on := range r.online {
		if on {
			r.emptySince = time.Time{}
			return
		}
	}
	if r.emptySince.IsZero() {
		r.emptySince = now
	}
}

// --- Envelope delivery ---

func (r *Room) nextSeq() uint64 {
	r.serverSeq++
	return r.serverSeq
}

// broadcastState sends each roster player their own redacted snapshot
// under a shared sequence number. Returns the sequence used.
func (r *Room) broadcastState(event string) uint64 {
	seq := r.nextSeq()
	for _, id := range r.game.Players() {
		if !r.online[id] {
			continue
		}
		env := codec.SnapshotEnvelope(r.Code, seq, event, r.game.SnapshotFor(id))
		data, err := codec.Marshal(env)
		if err != nil {
			log.Printf("[Room %s] Failed to marshal snapshot: %v", r.Code, err)
			continue
		}
		r.broadcast(id, data)
	}
	return seq
}

func (r *Room) sendSnapshot(playerID, event string) {
	env := codec.SnapshotEnvelope(r.Code, r.nextSeq(), event, r.game.SnapshotFor(playerID))
	data, err := codec.Marshal(env)
	if err != nil {
		log.Printf("[Room %s] Failed to marshal snapshot: %v", r.Code, err)
		return
	}
	r.broadcast(playerID, data)
}

func (r *Room) sendError(playerID string, cause error) {
	env := codec.ErrorEnvelope(r.Code, r.nextSeq(), cause)
	data, err := codec.Marshal(env)
	if err != nil {
		log.Printf("[Room %s] Failed to marshal error: %v", r.Code, err)
		return
	}
	r.broadcast(playerID, data)
}

func (r *Room) appendLedgerAction(seq uint64, playerID, event string) {
	if r.ledger == nil {
		return
	}
	snap := r.game.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[Room %s] Failed to marshal ledger snapshot: %v", r.Code, err)
		raw = nil
	}
	rec := ledger.ActionRecord{
		MatchCode: r.Code,
		Seq:       seq,
		PlayerID:  playerID,
		Event:     event,
		Snapshot:  raw,
		AppliedAt: time.Now().UTC(),
	}
	go r.ledger.AppendAction(rec)
}

// dispatchObserver runs synchronously so observers see committed changes
// in order. A panicking observer is contained, not fatal.
func (r *Room) dispatchObserver(seq uint64, event string) {
	if r.observer == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Room %s] observer panic: %v", r.Code, rec)
		}
	}()
	r.observer.OnStateChanged(r.Code, seq, event, r.game.Snapshot())
}
