package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteBackend stores results in a local SQLite file. This is the default
// for single-node deployments and tests.
type sqliteBackend struct {
	db *sql.DB
}

func openSQLite(path string) (*sqliteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create datastore directory: %w", err)
		}
	}
	conn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite datastore: %w", err)
	}
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteBackend{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
	}
	for _, table := range []string{TableCrop, TableDisease, TableYield, TableFertilizer} {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				payload TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user ON %s(user_id, created_at);`, table, table),
		)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema apply failed: %w", err)
		}
	}
	return nil
}

func (s *sqliteBackend) insert(ctx context.Context, table, userID string, payload map[string]any, createdAt time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, payload, created_at) VALUES (?, ?, ?)`, table)
	_, err = s.db.ExecContext(ctx, query, userID, string(data), createdAt)
	return err
}

func (s *sqliteBackend) recent(ctx context.Context, table, userID string, limit int) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT id, user_id, payload, created_at FROM %s
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, table)
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			raw string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &e.Payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteBackend) close() error {
	return s.db.Close()
}
