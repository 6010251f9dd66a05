package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/vietddude/prober/internal/infra/storage"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("PROBER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping PostgreSQL test. Set PROBER_TEST_DATABASE_URL to run.")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, Config{URL: url})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestSentinelStore_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	job := "test-" + t.Name()
	t.Cleanup(func() { _, _ = db.ExecContext(ctx, "DELETE FROM sentinels WHERE job = $1", job) })

	s := NewSentinelStore[int64](db, job, storage.IntCodec{})

	got, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil sentinel, got %d", *got)
	}

	if err := s.Commit(ctx, 41); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := s.Commit(ctx, 42); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	reopened := NewSentinelStore[int64](db, job, storage.IntCodec{})
	got, err = reopened.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got == nil || *got != 42 {
		t.Errorf("expected 42, got %v", got)
	}

	records, err := NewRecordRepo(db).List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	found := false
	for _, r := range records {
		if r.Job == job && r.Value == "42" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected record for %s in %v", job, records)
	}
}
