// Package file stores a sentinel as plain text in a single file.
//
// The file holds the sentinel's canonical text and nothing else. Every commit
// truncates and rewrites it in place, so a crash between the truncate and the
// write leaves an empty file, which reads back as "no sentinel yet". There is
// no cross-process locking.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vietddude/prober/internal/infra/storage"
)

// Store is a file-backed sentinel store. The file handle is opened once and
// owned by the store until Close.
type Store[S any] struct {
	path  string
	codec storage.Codec[S]

	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if needed) the sentinel file at path. Existing
// content is kept.
func Open[S any](path string, codec storage.Codec[S]) (*Store[S], error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open sentinel file: %w", err)
	}
	return &Store[S]{path: path, codec: codec, file: f}, nil
}

// Read decodes the sentinel at path without opening it for writing. A
// missing or empty file means no sentinel.
func Read[S any](path string, codec storage.Codec[S]) (*S, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sentinel file: %w", err)
	}
	return decode(codec, string(data))
}

// Path returns the file location.
func (s *Store[S]) Path() string {
	return s.path
}

// Current reads the whole file. An empty file means no sentinel.
func (s *Store[S]) Current(ctx context.Context) (*S, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil, storage.ErrStoreClosed
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind sentinel file: %w", err)
	}
	data, err := io.ReadAll(s.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read sentinel file: %w", err)
	}
	return decode(s.codec, string(data))
}

func decode[S any](codec storage.Codec[S], text string) (*S, error) {
	if text == "" {
		return nil, nil
	}
	v, err := codec.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sentinel: %w", err)
	}
	return &v, nil
}

// Commit truncates the file and writes the encoded sentinel.
func (s *Store[S]) Commit(ctx context.Context, sentinel S) error {
	text, err := s.codec.Encode(sentinel)
	if err != nil {
		return fmt.Errorf("failed to encode sentinel: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return storage.ErrStoreClosed
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind sentinel file: %w", err)
	}
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate sentinel file: %w", err)
	}
	if _, err := io.WriteString(s.file, text); err != nil {
		return fmt.Errorf("failed to write sentinel file: %w", err)
	}
	return nil
}

// Close releases the file handle. Further calls return ErrStoreClosed.
func (s *Store[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
