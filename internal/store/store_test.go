package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "agri.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	g.sleep = func(time.Duration) {}
	return g
}

func TestRecordAndRecent(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)
	ctx := context.Background()

	g.Record(ctx, TableCrop, "user-1", map[string]any{
		"predicted_crop": "Rice",
		"confidence":     94.2,
	})
	g.Record(ctx, TableCrop, "user-2", map[string]any{
		"predicted_crop": "Maize",
	})

	entries, err := g.Recent(ctx, TableCrop, "user-1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Payload["predicted_crop"] != "Rice" {
		t.Fatalf("payload = %v", entries[0].Payload)
	}
	if entries[0].UserID != "user-1" {
		t.Fatalf("user = %q", entries[0].UserID)
	}
}

func TestRecentNewestFirstAndLimited(t *testing.T) {
	t.Parallel()

	g := openTestGateway(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		g.Record(ctx, TableYield, "farmer", map[string]any{"seq": fmt.Sprintf("%02d", i)})
	}

	entries, err := g.Recent(ctx, TableYield, "farmer", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("got %d entries, want 10", len(entries))
	}
	if entries[0].Payload["seq"] != "14" {
		t.Fatalf("first entry seq = %v, want 14", entries[0].Payload["seq"])
	}
	if entries[9].Payload["seq"] != "05" {
		t.Fatalf("last entry seq = %v, want 05", entries[9].Payload["seq"])
	}
}

func TestRecordAbsorbsBackendFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	g := &Gateway{
		backend: failingBackend{onInsert: func() error {
			attempts++
			return fmt.Errorf("connection refused")
		}},
		sleep: func(time.Duration) {},
	}

	// Must not panic or surface the error.
	g.Record(context.Background(), TableDisease, "user-1", map[string]any{"disease": "Rust"})

	if attempts != 3 {
		t.Fatalf("insert attempted %d times, want 3", attempts)
	}
}

func TestRecordStopsRetryingOnSuccess(t *testing.T) {
	t.Parallel()

	attempts := 0
	g := &Gateway{
		backend: failingBackend{onInsert: func() error {
			attempts++
			if attempts < 2 {
				return fmt.Errorf("transient")
			}
			return nil
		}},
		sleep: func(time.Duration) {},
	}

	g.Record(context.Background(), TableFertilizer, "user-1", map[string]any{"fertilizer": "Urea"})

	if attempts != 2 {
		t.Fatalf("insert attempted %d times, want 2", attempts)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "oracle", "dsn"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), "sqlite", "  "); err == nil {
		t.Fatal("expected error for blank DSN")
	}
}

func TestNilGateway(t *testing.T) {
	t.Parallel()

	var g *Gateway
	g.Record(context.Background(), TableCrop, "user", nil)
	if _, err := g.Recent(context.Background(), TableCrop, "user", 10); err == nil {
		t.Fatal("expected error from nil gateway Recent")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

type failingBackend struct {
	onInsert func() error
}

func (f failingBackend) insert(context.Context, string, string, map[string]any, time.Time) error {
	return f.onInsert()
}

func (f failingBackend) recent(context.Context, string, string, int) ([]Entry, error) {
	return nil, fmt.Errorf("unreachable")
}

func (f failingBackend) close() error { return nil }
