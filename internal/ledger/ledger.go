// Package ledger records which monitors have already had their legacy icon
// positions imported, so the import runs at most once per monitor even after
// the resulting layout is deleted.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Ledger is a sqlite-backed set of migrated monitor ids.
type Ledger struct {
	db *sql.DB
}

// Entry is one recorded migration.
type Entry struct {
	MonitorID  string
	MigratedAt time.Time
}

// Open creates or opens the ledger database at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to ledger: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Migrated reports whether monitorID has been recorded.
func (l *Ledger) Migrated(ctx context.Context, monitorID string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM migrated_monitors WHERE monitor_id = ?`, monitorID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return true, nil
}

// MarkMigrated records monitorID. Recording an id twice keeps the first time.
func (l *Ledger) MarkMigrated(ctx context.Context, monitorID string, when time.Time) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO migrated_monitors (monitor_id, migrated_at)
		VALUES (?, ?)
		ON CONFLICT(monitor_id) DO NOTHING`,
		monitorID, when.Unix())
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// List returns all recorded migrations ordered by monitor id.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT monitor_id, migrated_at FROM migrated_monitors ORDER BY monitor_id`)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.MonitorID, &ts); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		e.MigratedAt = time.Unix(ts, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
