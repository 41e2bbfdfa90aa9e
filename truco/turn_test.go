package truco

import "testing"

func TestHigherStrengthWinsHand(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rig(t, g, map[string][]string{
		"ana":   {"1E", "3E", "4O"},
		"bruno": {"1B", "3O", "4C"},
	})
	res := play(t, g, "ana", "1E")
	if res.Event != "card_played" {
		t.Fatalf("event = %s", res.Event)
	}
	res = play(t, g, "bruno", "1B")
	if res.Event != "hand_resolved" {
		t.Fatalf("event = %s", res.Event)
	}
	if w := g.round.turn.hands[0].winner; w == nil || w.id != "team1" {
		t.Fatalf("hand 1 winner = %v, want team1", w)
	}
	if lead := g.round.turn.currentPlayer(); lead.id != "ana" {
		t.Fatalf("hand 2 opens with %s, want ana", lead.id)
	}
}

func TestWinPlusPardaEndsRound(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rig(t, g, map[string][]string{
		"ana":   {"1E", "3E", "4O"},
		"bruno": {"1B", "3O", "4C"},
	})
	play(t, g, "ana", "1E")
	play(t, g, "bruno", "1B")
	play(t, g, "ana", "3E")
	res := play(t, g, "bruno", "3O")
	if !res.RoundFinished {
		t.Fatal("win then parda should end the round")
	}
	if res.Summary.WinnerTeam != "team1" || res.Summary.TrucoPoints != 1 {
		t.Fatalf("summary = %+v", res.Summary)
	}
	if len(res.Summary.Hands) != 2 || res.Summary.Hands[1].Winner != "" {
		t.Fatalf("hands = %+v", res.Summary.Hands)
	}
}

func TestTwoWinsEndRoundEarly(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rig(t, g, map[string][]string{
		"ana":   {"1E", "7E", "4O"},
		"bruno": {"1B", "7O", "4C"},
	})
	play(t, g, "ana", "1E")
	play(t, g, "bruno", "1B")
	play(t, g, "ana", "7E")
	res := play(t, g, "bruno", "7O")
	if !res.RoundFinished {
		t.Fatal("two straight wins should end the round")
	}
	if res.Summary.WinnerTeam != "team1" {
		t.Fatalf("winner = %s", res.Summary.WinnerTeam)
	}
	if len(res.Summary.Hands) != 2 {
		t.Fatalf("played %d hands, want 2", len(res.Summary.Hands))
	}
}

func TestFirstHandTieGoesToLeaderTeam(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rig(t, g, map[string][]string{
		"ana":   {"3E", "4O", "5O"},
		"bruno": {"3O", "4C", "5C"},
	})
	play(t, g, "ana", "3E")
	play(t, g, "bruno", "3O")
	if w := g.round.turn.hands[0].winner; w == nil || w.id != "team1" {
		t.Fatalf("tied first hand winner = %v, want leader team1", w)
	}
}

func TestLaterHandCrossTeamTieIsParda(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rig(t, g, map[string][]string{
		"ana":   {"1E", "3E", "5O"},
		"bruno": {"4C", "3O", "5C"},
	})
	play(t, g, "ana", "1E")
	play(t, g, "bruno", "4C")
	play(t, g, "ana", "3E")
	res := play(t, g, "bruno", "3O")
	// hand 2 parda, but team1 already holds a win
	if !res.RoundFinished || res.Summary.WinnerTeam != "team1" {
		t.Fatalf("res = %+v", res)
	}
	if res.Summary.Hands[1].Winner != "" {
		t.Fatalf("hand 2 = %+v, want parda", res.Summary.Hands[1])
	}
}

// With two teams every first hand has a winner, so a full round of
// pardas cannot arise through play; the fallback still has to hold.
func TestAllPardasFallToRoundLeader(t *testing.T) {
	a := &Player{id: "a", team: newTeam(1)}
	b := &Player{id: "b", team: newTeam(2)}
	th := newTurnHandler([]*Player{a, b})
	th.hands = []handResult{{}, {}, {}}
	th.maybeResolveRound()
	if !th.done || th.winner != a.team {
		t.Fatalf("done=%v winner=%v, want leader team", th.done, th.winner)
	}
}

func TestPardaLeavesLeaderInPlace(t *testing.T) {
	a := &Player{id: "a", team: newTeam(1)}
	b := &Player{id: "b", team: newTeam(2)}
	th := newTurnHandler([]*Player{a, b})
	th.phase = PhaseHandTwo
	th.leader = b
	th.current = 1
	th.hands = []handResult{{}}
	th.plays = []playedCard{
		{player: b, card: cardByLabel(t, "3E")},
		{player: a, card: cardByLabel(t, "3O")},
	}
	res := th.resolveHand()
	if res.winner != nil {
		t.Fatalf("cross-team tie in hand 2 = %+v, want parda", res)
	}
}

func TestSameTeamTieEarliestCardWins(t *testing.T) {
	g := newTestGame(t, ModeTwoVsTwo, 15, "a", "b", "c", "d")
	rig(t, g, map[string][]string{
		"a": {"3E", "4O", "5O"},
		"b": {"4C", "5C", "6C"},
		"c": {"3O", "5B", "6B"},
		"d": {"4B", "6O", "7C"},
	})
	play(t, g, "a", "3E")
	play(t, g, "b", "4C")
	play(t, g, "c", "3O")
	play(t, g, "d", "4B")
	h := g.round.turn.hands[0]
	if h.winner == nil || h.winner.id != "team1" {
		t.Fatalf("winner = %v, want team1", h.winner)
	}
	if h.leader.id != "a" {
		t.Fatalf("leader = %s, want a (earliest of the tied team)", h.leader.id)
	}
	if cur := g.round.turn.currentPlayer(); cur.id != "a" {
		t.Fatalf("hand 2 opens with %s, want a", cur.id)
	}
}

func TestTurnValidation(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rig(t, g, map[string][]string{
		"ana":   {"1E", "3E", "4O"},
		"bruno": {"1B", "3O", "4C"},
	})
	mustFail(t, g, "bruno", Action{Type: ActionPlayCard, CardID: cardByLabel(t, "1B").ID()}, ReasonOutOfTurn)
	mustFail(t, g, "ana", Action{Type: ActionPlayCard, CardID: cardByLabel(t, "1B").ID()}, ReasonCardNotInHand)
	play(t, g, "ana", "1E")
	mustFail(t, g, "ana", Action{Type: ActionPlayCard, CardID: cardByLabel(t, "1E").ID()}, ReasonOutOfTurn)
}
