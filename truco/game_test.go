package truco

import (
	"errors"
	"testing"
)

func TestConfigValidation(t *testing.T) {
	if _, err := NewGame(Config{Mode: 5, TargetScore: 15}, nil); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("bad mode: err = %v, want ErrInvalidMode", err)
	}
	if _, err := NewGame(Config{Mode: ModeOneVsOne, TargetScore: 0}, nil); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("bad target: err = %v, want ErrInvalidTarget", err)
	}
}

func TestRosterInvariantsFreezeMatch(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
	}{
		{"wrong count", []string{"ana"}},
		{"duplicate id", []string{"ana", "ana"}},
		{"empty id", []string{"ana", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGame(Config{Mode: ModeOneVsOne, TargetScore: 15, Seed: 1}, tc.ids)
			var ie *InvariantError
			if !errors.As(err, &ie) {
				t.Fatalf("err = %v, want InvariantError", err)
			}
			if g == nil {
				t.Fatal("frozen match should still be inspectable")
			}
			if g.State() != StateErrored {
				t.Fatalf("state = %s, want errored", g.State())
			}
			snap := g.Snapshot()
			if snap.State != "errored" || snap.Fault == "" {
				t.Fatalf("snapshot state=%q fault=%q", snap.State, snap.Fault)
			}
			if _, err := g.Apply("ana", Action{Type: ActionConcede}); err == nil {
				t.Fatal("errored match accepted an action")
			}
		})
	}
}

func TestTeamAssignmentAlternatesSeats(t *testing.T) {
	g := newTestGame(t, ModeThreeVsThree, 30, "a", "b", "c", "d", "e", "f")
	want := map[string]string{
		"a": "team1", "c": "team1", "e": "team1",
		"b": "team2", "d": "team2", "f": "team2",
	}
	for id, teamID := range want {
		if got := g.byID[id].team.id; got != teamID {
			t.Fatalf("player %s on %s, want %s", id, got, teamID)
		}
	}
}

func TestApplyBeforeStart(t *testing.T) {
	g, err := NewGame(Config{Mode: ModeOneVsOne, TargetScore: 15, Seed: 1}, []string{"ana", "bruno"})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if _, err := g.Apply("ana", Action{Type: ActionConcede}); !errors.Is(err, ErrMatchNotStarted) {
		t.Fatalf("err = %v, want ErrMatchNotStarted", err)
	}
}

func TestUnknownPlayerRejected(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	mustFail(t, g, "ghost", Action{Type: ActionConcede}, ReasonUnknownPlayer)
}

func TestManoRotatesEachRound(t *testing.T) {
	g := newTestGame(t, ModeTwoVsTwo, 15, "a", "b", "c", "d")
	if g.round.order[0].id != "a" {
		t.Fatalf("round 1 mano = %s, want a", g.round.order[0].id)
	}
	for round := 2; round <= 5; round++ {
		mustApply(t, g, g.round.order[0].id, Action{Type: ActionConcede})
		want := []string{"a", "b", "c", "d"}[(round-1)%4]
		if got := g.round.order[0].id; got != want {
			t.Fatalf("round %d mano = %s, want %s", round, got, want)
		}
	}
}

func TestConcedePaysOnePointUntouched(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	res := mustApply(t, g, "bruno", Action{Type: ActionConcede})
	if !res.RoundFinished || res.MatchFinished {
		t.Fatalf("round finished=%v match finished=%v", res.RoundFinished, res.MatchFinished)
	}
	if got := score(t, g, "team1"); got != 1 {
		t.Fatalf("team1 score = %d, want 1", got)
	}
	if res.Summary == nil || res.Summary.WinnerTeam != "team1" || res.Summary.TrucoPoints != 1 {
		t.Fatalf("summary = %+v", res.Summary)
	}
}

func TestMatchFinishesAtTarget(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	var last *StepResult
	for i := 0; i < 15; i++ {
		if got := g.State(); got != StatePlaying {
			t.Fatalf("round %d: state = %s", i+1, got)
		}
		last = mustApply(t, g, "bruno", Action{Type: ActionConcede})
	}
	if !last.MatchFinished || last.WinningTeam != "team1" {
		t.Fatalf("last = %+v", last)
	}
	if g.State() != StateFinished || g.Winner() != "team1" {
		t.Fatalf("state=%s winner=%s", g.State(), g.Winner())
	}
	if got := score(t, g, "team1"); got != 15 {
		t.Fatalf("team1 score = %d, want 15", got)
	}
	mustFail(t, g, "ana", Action{Type: ActionConcede}, ReasonMatchOver)
}

func TestHistoryAccumulatesSummaries(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	mustApply(t, g, "bruno", Action{Type: ActionConcede})
	mustApply(t, g, "ana", Action{Type: ActionConcede})
	if len(g.history) != 2 {
		t.Fatalf("history length = %d, want 2", len(g.history))
	}
	if g.history[0].Number != 1 || g.history[1].Number != 2 {
		t.Fatalf("history numbers = %d, %d", g.history[0].Number, g.history[1].Number)
	}
	if g.history[1].WinnerTeam != "team2" {
		t.Fatalf("round 2 winner = %s, want team2", g.history[1].WinnerTeam)
	}
}
