package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresBackend stores results in a managed Postgres instance. Payloads go
// into a JSONB column so the schema never changes when a response gains a
// field.
type postgresBackend struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, dsn string) (*postgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres datastore: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &postgresBackend{pool: pool}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range []string{TableCrop, TableDisease, TableYield, TableFertilizer} {
		stmts := []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				user_id TEXT NOT NULL,
				payload JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user ON %s(user_id, created_at)`, table, table),
		}
		for _, stmt := range stmts {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("schema apply failed: %w", err)
			}
		}
	}
	return nil
}

func (p *postgresBackend) insert(ctx context.Context, table, userID string, payload map[string]any, createdAt time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (user_id, payload, created_at) VALUES ($1, $2, $3)`, table)
	_, err = p.pool.Exec(ctx, query, userID, data, createdAt)
	return err
}

func (p *postgresBackend) recent(ctx context.Context, table, userID string, limit int) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT id, user_id, payload, created_at FROM %s
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, table)
	rows, err := p.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &e.Payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *postgresBackend) close() error {
	p.pool.Close()
	return nil
}
