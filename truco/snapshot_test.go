package truco

import (
	"reflect"
	"testing"
)

func findSeat(t *testing.T, s Snapshot, id string) PlayerSnapshot {
	t.Helper()
	for _, ps := range s.Players {
		if ps.ID == id {
			return ps
		}
	}
	t.Fatalf("no player %q in snapshot", id)
	return PlayerSnapshot{}
}

func TestSnapshotHidesOtherHands(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rigEnvidoHands(t, g)
	s := g.SnapshotFor("ana")
	me := findSeat(t, s, "ana")
	if len(me.Hand) != 3 || me.EnvidoPoints != 33 {
		t.Fatalf("own seat = %+v", me)
	}
	rival := findSeat(t, s, "bruno")
	if len(rival.Hand) != 0 || rival.EnvidoPoints != -1 {
		t.Fatalf("rival seat leaked: %+v", rival)
	}
	if rival.HandCount != 3 {
		t.Fatalf("rival hand count = %d, want 3", rival.HandCount)
	}
}

func TestSnapshotOmniscientView(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rigEnvidoHands(t, g)
	s := g.Snapshot()
	if len(findSeat(t, s, "ana").Hand) != 3 || len(findSeat(t, s, "bruno").Hand) != 3 {
		t.Fatal("omniscient snapshot should show every hand")
	}
}

func TestSnapshotRevealsHandsOnceFinished(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	for i := 0; i < 15; i++ {
		mustApply(t, g, "bruno", Action{Type: ActionConcede})
	}
	s := g.SnapshotFor("ana")
	if s.State != "finished" || s.WinnerTeam != "team1" {
		t.Fatalf("state=%s winner=%s", s.State, s.WinnerTeam)
	}
	if len(findSeat(t, s, "bruno").Hand) != 3 {
		t.Fatal("finished match should reveal every hand")
	}
}

func TestSnapshotIsRepeatable(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rigEnvidoHands(t, g)
	play(t, g, "ana", "7E")
	a, b := g.SnapshotFor("bruno"), g.SnapshotFor("bruno")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same state rendered differently:\n%+v\n%+v", a, b)
	}
}

func TestSnapshotTracksTableAndTurn(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rigEnvidoHands(t, g)
	play(t, g, "ana", "7E")
	s := g.SnapshotFor("bruno")
	if s.TurnPlayer != "bruno" {
		t.Fatalf("turn = %q, want bruno", s.TurnPlayer)
	}
	if len(s.Table) != 1 || s.Table[0].Player != "ana" || s.Table[0].Card.Label != "7E" {
		t.Fatalf("table = %+v", s.Table)
	}
	if got := findSeat(t, s, "ana"); got.HandCount != 2 || len(got.Played) != 1 {
		t.Fatalf("ana seat = %+v", got)
	}
}

func TestSnapshotShowsPendingCanto(t *testing.T) {
	g := newTestGame(t, ModeOneVsOne, 15, "ana", "bruno")
	rigEnvidoHands(t, g)
	mustApply(t, g, "ana", Action{Type: ActionCallTruco, Truco: Truco})
	mustApply(t, g, "bruno", Action{Type: ActionCallEnvido, Envido: Envido})
	s := g.SnapshotFor("ana")
	p := s.Pending
	if p.Kind != "envido" || p.Level != "ENVIDO" || !p.TrucoSuspended {
		t.Fatalf("pending = %+v", p)
	}
	if p.CallerTeam != "team2" || p.ResponderTeam != "team1" {
		t.Fatalf("pending teams = %+v", p)
	}
	if s.TurnPlayer != "" {
		t.Fatalf("turn should be empty during a canto, got %q", s.TurnPlayer)
	}
	respond(t, g, "ana", Quiero)
	s = g.SnapshotFor("ana")
	if s.Pending.Kind != "envido_declaration" || s.Pending.DeclareTurn != "ana" {
		t.Fatalf("pending = %+v", s.Pending)
	}
}
