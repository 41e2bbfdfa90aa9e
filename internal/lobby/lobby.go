// Package lobby tracks every live room and owns match creation.
package lobby

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MarcoSchenker/Lab-1-sub000/internal/ledger"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/metrics"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/notify"
	"github.com/MarcoSchenker/Lab-1-sub000/internal/room"
	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

// Sender routes an envelope to one player's connection on one match.
type Sender interface {
	Send(matchCode, playerID string, data []byte)
}

// Lobby manages all rooms and match creation
type Lobby struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room

	sender   Sender
	ledger   ledger.Service
	observer notify.Observer

	defaultTarget int
}

// New creates a new lobby
func New(sender Sender, ledgerService ledger.Service, observer notify.Observer) *Lobby {
	return &Lobby{
		rooms:         make(map[string]*room.Room),
		sender:        sender,
		ledger:        ledgerService,
		observer:      observer,
		defaultTarget: truco.TargetLong,
	}
}

// CreateMatch registers a new room for the given roster.
func (l *Lobby) CreateMatch(mode truco.Mode, targetScore int, players []string) (*room.Room, error) {
	if targetScore == 0 {
		targetScore = l.defaultTarget
	}
	code := newMatchCode()

	cfg := truco.Config{
		Code:        code,
		Mode:        mode,
		TargetScore: targetScore,
		Seed:        0,
	}
	r, err := room.New(cfg, players, func(playerID string, data []byte) {
		l.sender.Send(code, playerID, data)
	}, l.ledger, l.observer)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.rooms[code] = r
	l.mu.Unlock()
	metrics.ActiveMatches.Inc()

	log.Printf("[Lobby] Created match %s (mode=%s, target=%d)", code, mode, targetScore)
	return r, nil
}

// GetRoom returns a room by match code
func (l *Lobby) GetRoom(code string) *room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rooms[code]
}

// ListRooms returns all live rooms
func (l *Lobby) ListRooms() []*room.Room {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*room.Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		out = append(out, r)
	}
	return out
}

// CloseMatch stops a room and drops it from the registry.
func (l *Lobby) CloseMatch(code string) bool {
	l.mu.Lock()
	r, ok := l.rooms[code]
	if ok {
		delete(l.rooms, code)
	}
	l.mu.Unlock()
	if !ok {
		return false
	}

	r.Stop()
	metrics.ActiveMatches.Dec()
	log.Printf("[Lobby] Closed match %s", code)
	return true
}

// RunJanitor sweeps idle and finished rooms until the context ends.
func (l *Lobby) RunJanitor(ctx context.Context, interval, idleTTL time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(idleTTL)
		}
	}
}

func (l *Lobby) sweep(idleTTL time.Duration) {
	for _, r := range l.ListRooms() {
		if r.IsClosed() || r.IsIdleFor(idleTTL) {
			log.Printf("[Lobby] Sweeping idle match %s", r.Code)
			l.CloseMatch(r.Code)
		}
	}
}

// Shutdown stops every room.
func (l *Lobby) Shutdown() {
	for _, r := range l.ListRooms() {
		l.CloseMatch(r.Code)
	}
}

func newMatchCode() string {
	return strings.Split(uuid.NewString(), "-")[0]
}

// ParseMode maps the wire form ("1v1", "2v2", "3v3") to a Mode.
func ParseMode(s string) (truco.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1v1":
		return truco.ModeOneVsOne, nil
	case "2v2":
		return truco.ModeTwoVsTwo, nil
	case "3v3":
		return truco.ModeThreeVsThree, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}
