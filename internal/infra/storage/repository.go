package storage

import (
	"context"
	"errors"

	"github.com/vietddude/prober/internal/core/domain"
)

var (
	// ErrStoreClosed is returned when a store is used after Close.
	ErrStoreClosed = errors.New("sentinel store closed")
)

// SentinelStore holds the last committed sentinel of one polling job.
type SentinelStore[S any] interface {
	// Current returns the last committed sentinel, or nil if nothing was
	// ever committed.
	Current(ctx context.Context) (*S, error)

	// Commit replaces the stored sentinel.
	Commit(ctx context.Context, sentinel S) error
}

// RecordRepository lists and overwrites sentinels in their text form. It
// backs the operator commands, which do not know the sentinel type.
type RecordRepository interface {
	// List returns every stored sentinel.
	List(ctx context.Context) ([]domain.SentinelRecord, error)

	// Put overwrites the sentinel of a job.
	Put(ctx context.Context, job string, value string) error
}
