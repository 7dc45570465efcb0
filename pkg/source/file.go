package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single log line. ASN.1 dumps can be long.
const maxLineSize = 1024 * 1024

// FileSource reads log text from one or more files, concatenated in sorted
// path order.
type FileSource struct {
	files []string
}

// NewFileSource creates a source over the given paths and glob patterns.
func NewFileSource(patterns []string) (*FileSource, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no log files given")
	}
	files, err := ExpandGlobs(patterns)
	if err != nil {
		return nil, err
	}
	return &FileSource{files: files}, nil
}

// Files returns the expanded file list.
func (s *FileSource) Files() []string {
	return s.files
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "files: " + strings.Join(s.files, ", ")
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, path := range s.files {
		if err := readFile(ctx, path, &b); err != nil {
			return "", err
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, s.Name())
	}
	return b.String(), nil
}

func readFile(ctx context.Context, path string, b *strings.Builder) error {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	if err := readLines(ctx, f, b); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// readLines appends every line of r to b, newline terminated.
func readLines(ctx context.Context, r io.Reader, b *strings.Builder) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	return scanner.Err()
}
