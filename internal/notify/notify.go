// Package notify fans match lifecycle events out to pluggable observers.
// Observers are fire-and-forget: a slow or failing sink never blocks the
// match actor.
package notify

import (
	"log"

	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

// Observer receives match events after they have been applied.
type Observer interface {
	OnStateChanged(matchCode string, seq uint64, event string, snap truco.Snapshot)
	OnMatchFinished(matchCode string, winnerTeam string, scores map[string]int)
}

// Multi dispatches each event to every registered observer. A panicking
// observer is logged and skipped; the rest still run.
type Multi struct {
	observers []Observer
}

func NewMulti(observers ...Observer) *Multi {
	out := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return &Multi{observers: out}
}

func (m *Multi) Add(o Observer) {
	if o != nil {
		m.observers = append(m.observers, o)
	}
}

func (m *Multi) OnStateChanged(matchCode string, seq uint64, event string, snap truco.Snapshot) {
	for _, o := range m.observers {
		safeDispatch(matchCode, func() { o.OnStateChanged(matchCode, seq, event, snap) })
	}
}

func (m *Multi) OnMatchFinished(matchCode string, winnerTeam string, scores map[string]int) {
	for _, o := range m.observers {
		safeDispatch(matchCode, func() { o.OnMatchFinished(matchCode, winnerTeam, scores) })
	}
}

func safeDispatch(matchCode string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Notify %s] observer panicked: %v", matchCode, r)
		}
	}()
	fn()
}
