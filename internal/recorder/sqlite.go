package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"MacroDash/internal/logging"
)

// SQLiteRecorder persists the refresh log to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log logrus.FieldLogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log logrus.FieldLogger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the dashboard read the log while a refresh writes to it.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logging.Component(log, "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refresh_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			source      TEXT,
			row_count   INTEGER,
			first_month TEXT,
			last_month  TEXT,
			duration_ms INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_log(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO refresh_log
		(timestamp, source, row_count, first_month, last_month, duration_ms, error)
		VALUES (?,?,?,?,?,?,?)`,
		at.UnixMilli(), evt.Trigger, evt.Rows, evt.FirstMonth, evt.LastMonth,
		evt.DurationMs, evt.Error,
	)
	return err
}

// RecentRefreshes returns up to limit events, newest first.
func (r *SQLiteRecorder) RecentRefreshes(limit int) ([]RefreshEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT timestamp, source, row_count, first_month, last_month, duration_ms, error
		FROM refresh_log ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query refresh log: %w", err)
	}
	defer rows.Close()

	var events []RefreshEvent
	for rows.Next() {
		var (
			ts  int64
			evt RefreshEvent
		)
		if err := rows.Scan(&ts, &evt.Trigger, &evt.Rows, &evt.FirstMonth, &evt.LastMonth, &evt.DurationMs, &evt.Error); err != nil {
			return nil, fmt.Errorf("scan refresh log: %w", err)
		}
		evt.At = time.UnixMilli(ts).UTC()
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
