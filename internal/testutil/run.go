package testutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/bufstream/pkg/fs"
)

// RunConfig configures a behavior test run.
type RunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// FS is the backend the real stream runs on. Nil means [fs.NewDefault].
	FS fs.FS
}

// DefaultRunConfig returns a balanced configuration for behavior tests.
func DefaultRunConfig() RunConfig {
	return RunConfig{MaxOps: 200}
}

// RunBehavior decodes a setup and an op sequence from gen, applies every op
// to the real stream and the model, and fails tb on the first observable
// difference. After the last op both sides are closed and the file content
// is compared.
func RunBehavior(tb testing.TB, cfg RunConfig, gen *OpGenerator) {
	tb.Helper()

	if cfg.MaxOps <= 0 {
		tb.Fatalf("RunBehavior requires MaxOps > 0")
	}

	fsys := cfg.FS
	if fsys == nil {
		fsys = fs.NewDefault()
	}

	mode, initial := gen.NextSetup()

	h := NewHarness(tb, mode, initial, fsys)
	history := make([]string, 0, cfg.MaxOps+1)
	history = append(history, fmt.Sprintf("Open(mode=%q, initial=%d bytes)", mode, len(initial)))

	for opIndex := 1; opIndex <= cfg.MaxOps && gen.HasMore(); opIndex++ {
		op := gen.NextOp()
		history = append(history, op.String())

		realRes := op.ApplyReal(h)
		modelRes := op.ApplyModel(h)

		if diff := cmp.Diff(modelRes, realRes); diff != "" {
			tb.Fatalf("result mismatch (-model +real):\n%s\n%s", diff, FormatOps(history))
		}

		err := CompareState(h)
		if err != nil {
			tb.Fatalf("%v\n%s", err, FormatOps(history))
		}
	}

	history = append(history, "Close()")

	got := h.Close()
	if diff := cmp.Diff(h.Model.File.Data, got, cmp.Comparer(bytes.Equal)); diff != "" {
		tb.Fatalf("file content mismatch (-model +real):\n%s\n%s", diff, FormatOps(history))
	}
}

// State is the observable state of a stream between calls.
type State struct {
	Tell   int64
	EOF    int
	Errors int
}

// CompareState checks position and counters of both sides.
func CompareState(h *Harness) error {
	modelState := State{Tell: h.Model.Tell(), EOF: h.Model.EOF, Errors: h.Model.Errors}
	realState := State{Tell: h.Real.Tell(), EOF: h.Real.EOF(), Errors: h.Real.Errors()}

	if diff := cmp.Diff(modelState, realState); diff != "" {
		return fmt.Errorf("state mismatch (-model +real):\n%s", diff)
	}

	return nil
}
