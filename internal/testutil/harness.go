// Package testutil provides ops and a harness for model-vs-real stream
// behavior tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/bufstream/pkg/fs"
	"github.com/calvinalkan/bufstream/pkg/stream"
	"github.com/calvinalkan/bufstream/pkg/stream/model"
)

// Harness drives a real [stream.Stream] and a [model.StreamModel] opened on
// the same initial content with the same mode.
type Harness struct {
	TB    testing.TB
	Path  string
	Mode  string
	Real  *stream.Stream
	Model *model.StreamModel

	closed bool
}

// NewHarness writes initial to a fresh temp file and opens it twice: once
// through fsys as a real stream and once as a model.
func NewHarness(tb testing.TB, mode string, initial []byte, fsys fs.FS) *Harness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "stream.bin")

	err := os.WriteFile(path, initial, 0o644)
	if err != nil {
		tb.Fatalf("write initial content: %v", err)
	}

	rs, err := stream.Open(path, mode, stream.WithFS(fsys))
	if err != nil {
		tb.Fatalf("open real stream: %v", err)
	}

	m, err := model.Open(model.NewFile(initial), mode)
	if err != nil {
		_ = rs.Close()

		tb.Fatalf("open model: %v", err)
	}

	h := &Harness{TB: tb, Path: path, Mode: mode, Real: rs, Model: m}

	tb.Cleanup(func() {
		if !h.closed {
			_ = h.Real.Close()
		}
	})

	return h
}

// Close closes both sides and returns the real file's content.
func (h *Harness) Close() []byte {
	h.TB.Helper()

	h.closed = true

	err := h.Real.Close()
	if err != nil {
		h.TB.Fatalf("close real stream: %v", err)
	}

	err = h.Model.Close()
	if err != nil {
		h.TB.Fatalf("close model: %v", err)
	}

	data, err := os.ReadFile(h.Path)
	if err != nil {
		h.TB.Fatalf("read back: %v", err)
	}

	return data
}
