package source

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ReaderSource reads log text from a stream such as stdin. The stream is
// consumed by the first Fetch.
type ReaderSource struct {
	name string
	r    io.Reader
}

// NewReaderSource creates a source over r.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{name: name, r: r}
}

// Name implements Source.
func (s *ReaderSource) Name() string {
	return s.name
}

// Fetch implements Source.
func (s *ReaderSource) Fetch(ctx context.Context) (string, error) {
	var b strings.Builder
	if err := readLines(ctx, s.r, &b); err != nil {
		return "", fmt.Errorf("reading %s: %w", s.name, err)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, s.name)
	}
	return b.String(), nil
}
