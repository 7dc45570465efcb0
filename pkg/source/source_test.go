package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "b.log", "[2024-01-15T10:00:01.000000] second\n")
	writeLog(t, dir, "a.log", "[2024-01-15T10:00:00.000000] first\r\ncontinuation")

	src, err := NewFileSource([]string{filepath.Join(dir, "*.log")})
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}

	text, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := "[2024-01-15T10:00:00.000000] first\ncontinuation\n[2024-01-15T10:00:01.000000] second\n"
	if text != want {
		t.Errorf("Fetch() = %q, want %q", text, want)
	}
	if len(src.Files()) != 2 {
		t.Errorf("Files() = %v, want 2 files", src.Files())
	}
}

func TestFileSource_Empty(t *testing.T) {
	path := writeLog(t, t.TempDir(), "empty.log", "")

	src, err := NewFileSource([]string{path})
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}

	_, err = src.Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrUnavailable", err)
	}
}

func TestFileSource_FileNotFound(t *testing.T) {
	src, err := NewFileSource([]string{"/nonexistent/amf.log"})
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}

	_, err = src.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() expected error for missing file")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() error = %v, a missing file is not an empty source", err)
	}
}

func TestFileSource_NoPatterns(t *testing.T) {
	if _, err := NewFileSource(nil); err == nil {
		t.Error("NewFileSource(nil) expected error")
	}
}

func TestFileSource_ContextCancellation(t *testing.T) {
	path := writeLog(t, t.TempDir(), "amf.log", "[2024] line\n")

	src, err := NewFileSource([]string{path})
	if err != nil {
		t.Fatalf("NewFileSource() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestReaderSource(t *testing.T) {
	src := NewReaderSource("stdin", strings.NewReader("line one\nline two"))

	text, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != "line one\nline two\n" {
		t.Errorf("Fetch() = %q", text)
	}
	if src.Name() != "stdin" {
		t.Errorf("Name() = %q, want stdin", src.Name())
	}

	// The stream is consumed.
	if _, err := src.Fetch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("second Fetch() error = %v, want ErrUnavailable", err)
	}
}

func TestCommandSource(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Fatalf("Required shell not found: %v", err)
	}

	tests := []struct {
		name            string
		script          string
		want            string
		wantUnavailable bool
	}{
		{name: "output", script: "printf 'IMSI 208990100001100\\n'", want: "IMSI 208990100001100\n"},
		{name: "silent", script: "true", wantUnavailable: true},
		{name: "failing", script: "echo 'No such container' >&2; exit 1", wantUnavailable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewCommandSource("/bin/sh", "-c", tt.script)
			text, err := src.Fetch(context.Background())

			if tt.wantUnavailable {
				if !errors.Is(err, ErrUnavailable) {
					t.Errorf("Fetch() error = %v, want ErrUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if text != tt.want {
				t.Errorf("Fetch() = %q, want %q", text, tt.want)
			}
		})
	}
}

func TestCommandSource_FailureCarriesStderr(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Fatalf("Required shell not found: %v", err)
	}

	_, err := NewCommandSource("/bin/sh", "-c", "echo 'No such container: amf' >&2; exit 1").Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "No such container: amf") {
		t.Errorf("Fetch() error = %v, want stderr in message", err)
	}
}

func TestCommandSource_MissingBinary(t *testing.T) {
	_, err := NewCommandSource("uelocate-no-such-binary").Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrUnavailable", err)
	}
}

func TestNewContainerSource(t *testing.T) {
	tests := []struct {
		container string
		want      string
	}{
		{"", "docker logs rfsim5g-oai-amf"},
		{"oai-amf", "docker logs oai-amf"},
	}

	for _, tt := range tests {
		if got := NewContainerSource(tt.container).Name(); got != tt.want {
			t.Errorf("NewContainerSource(%q).Name() = %q, want %q", tt.container, got, tt.want)
		}
	}
}
