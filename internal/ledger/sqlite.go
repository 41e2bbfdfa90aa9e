package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "truco_local.db"

type SQLiteService struct {
	db        *sql.DB
	listLimit int
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath, err := ledgerLocalDatabasePathFromEnv()
	if err != nil {
		return nil, err
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{
		db:        db,
		listLimit: envIntOrDefault("LEDGER_LIST_LIMIT", defaultListLimit),
	}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) AppendAction(rec ActionRecord) {
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
    match_code, seq, player_id, event_type, snapshot_json, applied_at_ms
)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (match_code, seq) DO NOTHING
`, rec.MatchCode, int64(rec.Seq), rec.PlayerID, rec.Event, nullableJSON(rec.Snapshot), rec.AppliedAt.UnixMilli())
	if err != nil {
		log.Printf("[Ledger] append action failed: match=%s seq=%d err=%v", rec.MatchCode, rec.Seq, err)
	}
}

func (s *SQLiteService) SaveResult(rec ResultRecord) {
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
    match_code, mode, target_score, winner_team, scores_json, history_json, finished_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (match_code) DO UPDATE
SET
    winner_team = excluded.winner_team,
    scores_json = excluded.scores_json,
    history_json = excluded.history_json,
    finished_at_ms = excluded.finished_at_ms
`, rec.MatchCode, rec.Mode, rec.TargetScore, rec.WinnerTeam, string(scoresRaw), string(historyRaw), rec.FinishedAt.UnixMilli())
	if err != nil {
		log.Printf("[Ledger] save result failed: match=%s err=%v", rec.MatchCode, err)
	}
}

func (s *SQLiteService) ListResults(ctx context.Context, limit int) ([]ResultRecord, error) {
	limit = clampLimit(limit, s.listLimit)
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT match_code, mode, target_score, winner_team, scores_json, history_json, finished_at_ms
FROM match_results
ORDER BY finished_at_ms DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ResultRecord, 0, limit)
	for rows.Next() {
		var rec ResultRecord
		var scoresRaw, historyRaw []byte
		var finishedAtMs int64
		if err := rows.Scan(&rec.MatchCode, &rec.Mode, &rec.TargetScore, &rec.WinnerTeam, &scoresRaw, &historyRaw, &finishedAtMs); err != nil {
			return nil, err
		}
		rec.FinishedAt = time.UnixMilli(finishedAtMs).UTC()
		decodeResultBlobs(&rec, scoresRaw, historyRaw)
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *SQLiteService) GetActions(ctx context.Context, matchCode string) ([]ActionRecord, error) {
	if matchCode == "" {
		return nil, ErrNotFound
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT match_code, seq, player_id, event_type, snapshot_json, applied_at_ms
FROM match_event_stream
WHERE match_code = ?
ORDER BY seq ASC
`, matchCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ActionRecord, 0, 128)
	for rows.Next() {
		var rec ActionRecord
		var seq, appliedAtMs int64
		var snapRaw sql.NullString
		if err := rows.Scan(&rec.MatchCode, &seq, &rec.PlayerID, &rec.Event, &snapRaw, &appliedAtMs); err != nil {
			return nil, err
		}
		rec.Seq = uint64(seq)
		rec.AppliedAt = time.UnixMilli(appliedAtMs).UTC()
		if snapRaw.Valid {
			rec.Snapshot = json.RawMessage(snapRaw.String)
		}
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

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS match_event_stream (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    match_code TEXT NOT NULL,
    seq INTEGER NOT NULL,
    player_id TEXT NOT NULL DEFAULT '',
    event_type TEXT NOT NULL,
    snapshot_json TEXT,
    applied_at_ms INTEGER NOT NULL,
    UNIQUE (match_code, seq)
)`,
		`CREATE INDEX IF NOT EXISTS idx_match_event_stream_code_seq ON match_event_stream(match_code, seq)`,
		`
CREATE TABLE IF NOT EXISTS match_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    match_code TEXT NOT NULL UNIQUE,
    mode TEXT NOT NULL,
    target_score INTEGER NOT NULL,
    winner_team TEXT NOT NULL DEFAULT '',
    scores_json TEXT NOT NULL DEFAULT '{}',
    history_json TEXT NOT NULL DEFAULT '[]',
    finished_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_match_results_finished ON match_results(finished_at_ms DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func ledgerLocalDatabasePathFromEnv() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("LEDGER_LOCAL_DATABASE_PATH")),
		strings.TrimSpace(os.Getenv("LOCAL_DATABASE_PATH")),
	}
	for _, candidate := range candidates {
		if candidate != "" {
			return filepath.Clean(candidate), nil
		}
	}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "TrucoServer", defaultLocalDBName), nil
}
