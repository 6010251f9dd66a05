package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/prober/internal/core/domain"
	"github.com/vietddude/prober/internal/infra/storage"
)

const upsertSentinel = `
INSERT INTO sentinels (job, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (job) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// SentinelStore implements storage.SentinelStore with one row per job.
type SentinelStore[S any] struct {
	db    *DB
	job   string
	codec storage.Codec[S]
}

// NewSentinelStore creates a PostgreSQL sentinel store for one job.
func NewSentinelStore[S any](db *DB, job string, codec storage.Codec[S]) *SentinelStore[S] {
	return &SentinelStore[S]{db: db, job: job, codec: codec}
}

// Current returns nil when the job has no row yet.
func (s *SentinelStore[S]) Current(ctx context.Context) (*S, error) {
	var text string
	err := s.db.GetContext(ctx, &text, "SELECT value FROM sentinels WHERE job = $1", s.job)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sentinel: %w", err)
	}

	v, err := s.codec.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sentinel for job %s: %w", s.job, err)
	}
	return &v, nil
}

// Commit upserts the sentinel in a single statement.
func (s *SentinelStore[S]) Commit(ctx context.Context, sentinel S) error {
	text, err := s.codec.Encode(sentinel)
	if err != nil {
		return fmt.Errorf("failed to encode sentinel: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertSentinel, s.job, text, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save sentinel: %w", err)
	}
	return nil
}

// RecordRepo implements storage.RecordRepository.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a new PostgreSQL record repository.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

type sentinelRow struct {
	Job       string `db:"job"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// List returns all sentinels ordered by job name.
func (r *RecordRepo) List(ctx context.Context) ([]domain.SentinelRecord, error) {
	var rows []sentinelRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT job, value, updated_at FROM sentinels ORDER BY job"); err != nil {
		return nil, fmt.Errorf("failed to list sentinels: %w", err)
	}

	records := make([]domain.SentinelRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.SentinelRecord{
			Job:       row.Job,
			Value:     row.Value,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return records, nil
}

// Put overwrites the sentinel of a job.
func (r *RecordRepo) Put(ctx context.Context, job string, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertSentinel, job, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to put sentinel: %w", err)
	}
	return nil
}
