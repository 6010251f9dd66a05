package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/prober/internal/core/domain"
	"github.com/vietddude/prober/internal/infra/storage"
)

// SentinelStore keeps one job's sentinel under a single Redis key.
type SentinelStore[S any] struct {
	rdb   *redis.Client
	key   string
	codec storage.Codec[S]
}

// NewSentinelStore creates a Redis-backed sentinel store for one job.
func NewSentinelStore[S any](client *Client, prefix, job string, codec storage.Codec[S]) *SentinelStore[S] {
	return &SentinelStore[S]{
		rdb:   client.rdb,
		key:   sentinelKey(prefix, job),
		codec: codec,
	}
}

func (s *SentinelStore[S]) Current(ctx context.Context) (*S, error) {
	text, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}

	v, err := s.codec.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sentinel at %s: %w", s.key, err)
	}
	return &v, nil
}

func (s *SentinelStore[S]) Commit(ctx context.Context, sentinel S) error {
	text, err := s.codec.Encode(sentinel)
	if err != nil {
		return fmt.Errorf("failed to encode sentinel: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, text, 0).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// RecordRepo implements storage.RecordRepository over all sentinel keys.
type RecordRepo struct {
	rdb    *redis.Client
	prefix string
}

// NewRecordRepo creates a new Redis record repository.
func NewRecordRepo(client *Client, prefix string) *RecordRepo {
	return &RecordRepo{rdb: client.rdb, prefix: prefix}
}

// List scans every key under the prefix. UpdatedAt is not tracked in Redis.
func (r *RecordRepo) List(ctx context.Context) ([]domain.SentinelRecord, error) {
	var records []domain.SentinelRecord

	iter := r.rdb.Scan(ctx, 0, sentinelKey(r.prefix, "*"), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := r.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get failed: %w", err)
		}
		records = append(records, domain.SentinelRecord{
			Job:   jobFromKey(r.prefix, key),
			Value: val,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return records, nil
}

// Put overwrites the sentinel of a job.
func (r *RecordRepo) Put(ctx context.Context, job string, value string) error {
	if err := r.rdb.Set(ctx, sentinelKey(r.prefix, job), value, 0).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}
