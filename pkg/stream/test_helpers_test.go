package stream_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/bufstream/pkg/fs"
	"github.com/calvinalkan/bufstream/pkg/stream"
)

// backends lists every descriptor backend streams are expected to behave
// identically on.
func backends() map[string]fs.FS {
	return map[string]fs.FS{
		"default": fs.NewDefault(),
		"os":      fs.NewReal(),
	}
}

func tempPath(t *testing.T, name string) string {
	t.Helper()

	return filepath.Join(t.TempDir(), name)
}

func mustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()

	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return data
}

func mustOpen(t *testing.T, path, mode string, opts ...stream.Option) *stream.Stream {
	t.Helper()

	s, err := stream.Open(path, mode, opts...)
	if err != nil {
		t.Fatalf("Open(%q, %q): %v", path, mode, err)
	}

	return s
}

func mustClose(t *testing.T, s *stream.Stream) {
	t.Helper()

	err := s.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// pattern returns n deterministic bytes that do not repeat every 256 bytes.
func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte((i*7 + i/251) % 256)
	}

	return out
}

func putAll(t *testing.T, s *stream.Stream, data []byte) {
	t.Helper()

	for i, c := range data {
		if got := s.PutChar(int(c)); got != int(c) {
			t.Fatalf("PutChar #%d=%d, want %d (err=%v)", i, got, c, s.Err())
		}
	}
}

func assertCounters(t *testing.T, s *stream.Stream, wantEOF, wantErrors int) {
	t.Helper()

	if got := s.EOF(); got != wantEOF {
		t.Fatalf("EOF()=%d, want %d (err=%v)", got, wantEOF, s.Err())
	}

	if got := s.Errors(); got != wantErrors {
		t.Fatalf("Errors()=%d, want %d (err=%v)", got, wantErrors, s.Err())
	}
}
