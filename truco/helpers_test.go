package truco

import (
	"strconv"
	"testing"

	"github.com/MarcoSchenker/Lab-1-sub000/card"
)

func newTestGame(t *testing.T, mode Mode, target int, ids ...string) *Game {
	t.Helper()
	g, err := NewGame(Config{Mode: mode, TargetScore: target, Seed: 1}, ids)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g
}

// cardByLabel resolves labels like "7E" or "12O".
func cardByLabel(t *testing.T, label string) card.Card {
	t.Helper()
	rank, err := strconv.Atoi(label[:len(label)-1])
	if err != nil {
		t.Fatalf("bad card label %q", label)
	}
	var s card.Suit
	switch label[len(label)-1] {
	case 'E':
		s = card.Espada
	case 'B':
		s = card.Basto
	case 'O':
		s = card.Oro
	case 'C':
		s = card.Copa
	default:
		t.Fatalf("bad suit in label %q", label)
	}
	c, ok := card.Find(s, uint8(rank))
	if !ok {
		t.Fatalf("no card %q in deck", label)
	}
	return c
}

// rig overrides hands for the round in progress.
func rig(t *testing.T, g *Game, hands map[string][]string) {
	t.Helper()
	for id, labels := range hands {
		p, ok := g.byID[id]
		if !ok {
			t.Fatalf("no player %q", id)
		}
		cards := make([]card.Card, len(labels))
		for i, l := range labels {
			cards[i] = cardByLabel(t, l)
		}
		p.dealt(cards)
	}
}

func mustApply(t *testing.T, g *Game, pid string, act Action) *StepResult {
	t.Helper()
	res, err := g.Apply(pid, act)
	if err != nil {
		t.Fatalf("%s %s: %v", pid, act.Type, err)
	}
	return res
}

func mustFail(t *testing.T, g *Game, pid string, act Action, want Reason) {
	t.Helper()
	_, err := g.Apply(pid, act)
	if err == nil {
		t.Fatalf("%s %s: expected rejection %s, got none", pid, act.Type, want)
	}
	if got := ReasonOf(err); got != want {
		t.Fatalf("%s %s: reason = %q, want %q (%v)", pid, act.Type, got, want, err)
	}
}

func play(t *testing.T, g *Game, pid, label string) *StepResult {
	t.Helper()
	return mustApply(t, g, pid, Action{Type: ActionPlayCard, CardID: cardByLabel(t, label).ID()})
}

func respond(t *testing.T, g *Game, pid string, r Response) *StepResult {
	t.Helper()
	return mustApply(t, g, pid, Action{Type: ActionRespond, Response: r})
}

func declare(t *testing.T, g *Game, pid string, points int) *StepResult {
	t.Helper()
	return mustApply(t, g, pid, Action{Type: ActionDeclarePoints, Points: points})
}

func score(t *testing.T, g *Game, teamID string) int {
	t.Helper()
	s, ok := g.Scores()[teamID]
	if !ok {
		t.Fatalf("no team %q", teamID)
	}
	return s
}
