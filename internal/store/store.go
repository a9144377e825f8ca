// Package store persists prediction results and serves per-user history.
//
// Persistence is best effort: a prediction response never fails because the
// database is down. Writes are retried a few times and then dropped with a
// structured log entry and a metrics increment.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hingan-ai/agri-api/internal/logutil"
	"github.com/hingan-ai/agri-api/internal/metrics"
)

// Prediction result tables. Every table has the same shape: a user ID, a JSON
// payload, and a creation timestamp.
const (
	TableCrop       = "crop_recommendations"
	TableDisease    = "disease_detections"
	TableYield      = "crop_yield_predictions"
	TableFertilizer = "fertilizer_recommendations"
)

const (
	recordAttempts = 3
	retryDelay     = time.Second
)

// Entry is one stored prediction result.
type Entry struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// backend is a driver-specific result store.
type backend interface {
	insert(ctx context.Context, table, userID string, payload map[string]any, createdAt time.Time) error
	recent(ctx context.Context, table, userID string, limit int) ([]Entry, error)
	close() error
}

// Gateway fronts a backend with retry and drop accounting.
type Gateway struct {
	backend backend

	// sleep is swapped out in tests to keep the retry path fast.
	sleep func(time.Duration)
}

// Open selects and initializes a backend by driver name. Supported drivers
// are "sqlite" and "postgres".
func Open(ctx context.Context, driver, dsn string) (*Gateway, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("datastore DSN is required")
	}

	var (
		b   backend
		err error
	)
	switch driver {
	case "", "sqlite":
		b, err = openSQLite(dsn)
	case "postgres":
		b, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported datastore driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}
	return &Gateway{backend: b, sleep: time.Sleep}, nil
}

// Record writes a prediction result, retrying transient failures. The write
// is best effort: after the final attempt fails the result is dropped and the
// drop is logged and counted, but no error reaches the caller.
func (g *Gateway) Record(ctx context.Context, table, userID string, payload map[string]any) {
	if g == nil {
		return
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= recordAttempts; attempt++ {
		lastErr = g.backend.insert(ctx, table, userID, payload, time.Now().UTC())
		if lastErr == nil {
			metrics.ObservePersistenceAttempt(table, true)
			return
		}
		metrics.ObservePersistenceAttempt(table, false)
		logutil.Warn("persistence attempt failed", lastErr, map[string]interface{}{
			"table":   table,
			"attempt": attempt,
		})
		if attempt < recordAttempts {
			g.sleep(retryDelay)
		}
	}

	metrics.ObservePersistenceDrop(table)
	logutil.Error("prediction result dropped", lastErr, map[string]interface{}{
		"table":      table,
		"attempts":   recordAttempts,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// Recent returns a user's newest entries in one table, newest first.
func (g *Gateway) Recent(ctx context.Context, table, userID string, limit int) ([]Entry, error) {
	if g == nil {
		return nil, fmt.Errorf("datastore is not configured")
	}
	return g.backend.recent(ctx, table, userID, limit)
}

// Close shuts down the backend.
func (g *Gateway) Close() error {
	if g == nil || g.backend == nil {
		return nil
	}
	return g.backend.close()
}
