package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

func newMemoryLedger(t *testing.T) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("open sqlite ledger: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestSQLiteActionStreamRoundTrip(t *testing.T) {
	svc := newMemoryLedger(t)

	snap := json.RawMessage(`{"state":"playing"}`)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for seq := uint64(1); seq <= 3; seq++ {
		svc.AppendAction(ActionRecord{
			MatchCode: "m-1",
			Seq:       seq,
			PlayerID:  "ana",
			Event:     "card_played",
			Snapshot:  snap,
			AppliedAt: base.Add(time.Duration(seq) * time.Second),
		})
	}
	// Duplicate seq is ignored, not an error.
	svc.AppendAction(ActionRecord{MatchCode: "m-1", Seq: 2, PlayerID: "bruno", Event: "truco_called"})

	actions, err := svc.GetActions(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("get actions: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}
	for i, rec := range actions {
		if rec.Seq != uint64(i+1) {
			t.Fatalf("action %d has seq %d", i, rec.Seq)
		}
		if rec.PlayerID != "ana" || rec.Event != "card_played" {
			t.Fatalf("duplicate seq overwrote original: %+v", rec)
		}
	}
	if string(actions[0].Snapshot) != `{"state":"playing"}` {
		t.Fatalf("snapshot round trip: %s", actions[0].Snapshot)
	}
	if !actions[0].AppliedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("applied_at round trip: %v", actions[0].AppliedAt)
	}
}

func TestSQLiteGetActionsUnknownMatch(t *testing.T) {
	svc := newMemoryLedger(t)

	if _, err := svc.GetActions(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteResultsUpsertAndList(t *testing.T) {
	svc := newMemoryLedger(t)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.SaveResult(ResultRecord{
		MatchCode:   "m-1",
		Mode:        "2v2",
		TargetScore: 30,
		WinnerTeam:  "",
		Scores:      map[string]int{"team1": 12, "team2": 9},
		FinishedAt:  first,
	})
	svc.SaveResult(ResultRecord{
		MatchCode:   "m-2",
		Mode:        "1v1",
		TargetScore: 15,
		WinnerTeam:  "team2",
		Scores:      map[string]int{"team1": 8, "team2": 15},
		History:     []truco.RoundSummary{{Number: 1, WinnerTeam: "team2", TrucoPoints: 2}},
		FinishedAt:  first.Add(time.Hour),
	})
	// Upsert replaces the earlier row for the same match.
	svc.SaveResult(ResultRecord{
		MatchCode:   "m-1",
		Mode:        "2v2",
		TargetScore: 30,
		WinnerTeam:  "team1",
		Scores:      map[string]int{"team1": 30, "team2": 9},
		FinishedAt:  first.Add(2 * time.Hour),
	})

	results, err := svc.ListResults(context.Background(), 10)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].MatchCode != "m-1" || results[0].WinnerTeam != "team1" {
		t.Fatalf("newest result first, upserted: %+v", results[0])
	}
	if results[0].Scores["team1"] != 30 {
		t.Fatalf("scores round trip: %+v", results[0].Scores)
	}
	if results[1].MatchCode != "m-2" {
		t.Fatalf("expected m-2 second, got %+v", results[1])
	}
	if len(results[1].History) != 1 || results[1].History[0].WinnerTeam != "team2" {
		t.Fatalf("history round trip: %+v", results[1].History)
	}

	limited, err := svc.ListResults(context.Background(), 1)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit 1, got %d", len(limited))
	}
}
