package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Codec converts a sentinel to and from its canonical text form.
type Codec[S any] interface {
	Encode(sentinel S) (string, error)
	Decode(text string) (S, error)
}

// StringCodec stores strings as-is.
type StringCodec struct{}

func (StringCodec) Encode(s string) (string, error) { return s, nil }
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// IntCodec stores signed integers in base 10.
type IntCodec struct{}

func (IntCodec) Encode(v int64) (string, error) {
	return strconv.FormatInt(v, 10), nil
}

func (IntCodec) Decode(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int sentinel %q: %w", s, err)
	}
	return v, nil
}

// UintCodec stores unsigned integers in base 10.
type UintCodec struct{}

func (UintCodec) Encode(v uint64) (string, error) {
	return strconv.FormatUint(v, 10), nil
}

func (UintCodec) Decode(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uint sentinel %q: %w", s, err)
	}
	return v, nil
}
