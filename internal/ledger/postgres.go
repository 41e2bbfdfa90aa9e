package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

type PostgresService struct {
	db        *sql.DB
	listLimit int
}

// NewPostgresServiceFromEnv connects and verifies the schema exists.
// Unlike the SQLite backend, Postgres is provisioned externally.
func NewPostgresServiceFromEnv() (*PostgresService, error) {
	dsn := ledgerDSNFromEnv()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	var schemaReady bool
	if err := db.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1
    FROM information_schema.tables
    WHERE table_schema = 'public'
      AND table_name = 'match_event_stream'
)`).Scan(&schemaReady); err != nil {
		_ = db.Close()
		return nil, err
	}
	if !schemaReady {
		_ = db.Close()
		return nil, fmt.Errorf("ledger schema not initialized: missing table match_event_stream")
	}

	return &PostgresService{
		db:        db,
		listLimit: envIntOrDefault("LEDGER_LIST_LIMIT", defaultListLimit),
	}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) AppendAction(rec ActionRecord) {
	if rec.MatchCode == "" {
		return
	}
	if rec.AppliedAt.IsZero() {
		rec.AppliedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO match_event_stream (
    match_code, seq, player_id, event_type, snapshot_json, applied_at
)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)
ON CONFLICT (match_code, seq) DO NOTHING
`, rec.MatchCode, rec.Seq, rec.PlayerID, rec.Event, nullableJSON(rec.Snapshot), rec.AppliedAt)
	if err != nil {
		log.Printf("[Ledger] append action failed: match=%s seq=%d err=%v", rec.MatchCode, rec.Seq, err)
	}
}

func (s *PostgresService) SaveResult(rec ResultRecord) {
	if rec.MatchCode == "" {
		return
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	scoresRaw, err := json.Marshal(rec.Scores)
	if err != nil {
		log.Printf("[Ledger] marshal scores failed: match=%s err=%v", rec.MatchCode, err)
		return
	}
	historyRaw, err := json.Marshal(rec.History)
	if err != nil {
		log.Printf("[Ledger] marshal history failed: match=%s err=%v", rec.MatchCode, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO match_results (
    match_code, mode, target_score, winner_team, scores_json, history_json, finished_at
)
VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7)
ON CONFLICT (match_code) DO UPDATE
SET
    winner_team = EXCLUDED.winner_team,
    scores_json = EXCLUDED.scores_json,
    history_json = EXCLUDED.history_json,
    finished_at = EXCLUDED.finished_at
`, rec.MatchCode, rec.Mode, rec.TargetScore, rec.WinnerTeam, string(scoresRaw), string(historyRaw), rec.FinishedAt)
	if err != nil {
		log.Printf("[Ledger] save result failed: match=%s err=%v", rec.MatchCode, err)
	}
}

func (s *PostgresService) ListResults(ctx context.Context, limit int) ([]ResultRecord, error) {
	limit = clampLimit(limit, s.listLimit)
	rows, err := s.db.QueryContext(ctx, `
SELECT match_code, mode, target_score, winner_team, scores_json, history_json, finished_at
FROM match_results
ORDER BY finished_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ResultRecord, 0, limit)
	for rows.Next() {
		var rec ResultRecord
		var scoresRaw, historyRaw []byte
		if err := rows.Scan(&rec.MatchCode, &rec.Mode, &rec.TargetScore, &rec.WinnerTeam, &scoresRaw, &historyRaw, &rec.FinishedAt); err != nil {
			return nil, err
		}
		decodeResultBlobs(&rec, scoresRaw, historyRaw)
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *PostgresService) GetActions(ctx context.Context, matchCode string) ([]ActionRecord, error) {
	if matchCode == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT match_code, seq, player_id, event_type, snapshot_json, applied_at
FROM match_event_stream
WHERE match_code = $1
ORDER BY seq ASC
`, matchCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ActionRecord, 0, 128)
	for rows.Next() {
		var rec ActionRecord
		var snapRaw []byte
		if err := rows.Scan(&rec.MatchCode, &rec.Seq, &rec.PlayerID, &rec.Event, &snapRaw, &rec.AppliedAt); err != nil {
			return nil, err
		}
		rec.Snapshot = json.RawMessage(snapRaw)
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func decodeResultBlobs(rec *ResultRecord, scoresRaw, historyRaw []byte) {
	if len(scoresRaw) > 0 {
		_ = json.Unmarshal(scoresRaw, &rec.Scores)
	}
	if rec.Scores == nil {
		rec.Scores = map[string]int{}
	}
	if len(historyRaw) > 0 {
		_ = json.Unmarshal(historyRaw, &rec.History)
	}
}

func nullableJSON(v json.RawMessage) any {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}
