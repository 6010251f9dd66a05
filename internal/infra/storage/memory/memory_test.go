package memory

import (
	"context"
	"testing"
)

func TestStore_EmptyByDefault(t *testing.T) {
	s := NewStore[uint64]()

	got, err := s.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil sentinel, got %d", *got)
	}
}

func TestStore_CommitReplaces(t *testing.T) {
	s := NewStore[uint64]()
	ctx := context.Background()

	for _, v := range []uint64{3, 7} {
		if err := s.Commit(ctx, v); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
	}

	got, _ := s.Current(ctx)
	if got == nil || *got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}

	// Mutating the returned copy must not leak into the store.
	*got = 100
	again, _ := s.Current(ctx)
	if *again != 7 {
		t.Errorf("expected store to keep 7, got %d", *again)
	}
}
