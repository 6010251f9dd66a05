package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vietddude/prober/internal/infra/storage"
)

func openTemp(t *testing.T) (*Store[int64], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel")
	s, err := Open[int64](path, storage.IntCodec{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_MissingFileMeansNoSentinel(t *testing.T) {
	s, path := openTemp(t)

	got, err := s.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil sentinel, got %d", *got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to be created: %v", err)
	}
}

func TestStore_RoundTripAcrossInstances(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()

	if err := s.Commit(ctx, 42); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	reopened, err := Open[int64](path, storage.IntCodec{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got == nil || *got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}

	raw, _ := os.ReadFile(path)
	if string(raw) != "42" {
		t.Errorf("expected file content %q, got %q", "42", raw)
	}
}

func TestStore_CommitTruncatesLongerValue(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()

	_ = s.Commit(ctx, 123456)
	_ = s.Commit(ctx, 7)

	raw, _ := os.ReadFile(path)
	if string(raw) != "7" {
		t.Errorf("expected file content %q, got %q", "7", raw)
	}
	got, _ := s.Current(ctx)
	if got == nil || *got != 7 {
		t.Errorf("expected 7, got %v", got)
	}
}

func TestStore_ParseErrorSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel")
	if err := os.WriteFile(path, []byte("not-a-number"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open[int64](path, storage.IntCodec{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Current(context.Background()); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestStore_UseAfterClose(t *testing.T) {
	s, _ := openTemp(t)
	_ = s.Close()

	if _, err := s.Current(context.Background()); !errors.Is(err, storage.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
	if err := s.Commit(context.Background(), 1); !errors.Is(err, storage.ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}

func TestRead_MissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentinel")

	v, err := Read[int64](path, storage.IntCodec{})
	if err != nil || v != nil {
		t.Fatalf("Read = %v, %v; want nil, nil", v, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Read must not create the file (stat err=%v)", err)
	}
}

func TestRead_SeesCommittedValue(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Commit(context.Background(), 42); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	v, err := Read[int64](path, storage.IntCodec{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v == nil || *v != 42 {
		t.Errorf("Read = %v, want 42", v)
	}
}
