package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/calvinalkan/bufstream/pkg/stream"
)

// IO handles command output and collects warnings.
//
// Warnings are printed to stderr at both the start and the end of output,
// so they stay visible when stdout is piped through head or tail. Any
// warning makes [IO.Finish] return exit code 1.
type IO struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// NewIO creates a new IO instance.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{in: in, out: out, errOut: errOut}
}

// In returns the command's standard input. A nil input reads as empty.
func (o *IO) In() io.Reader {
	if o.in == nil {
		return strings.NewReader("")
	}

	return o.in
}

// Out returns stdout for commands that stream raw bytes.
func (o *IO) Out() io.Writer {
	o.flushWarningsStart()

	return o.out
}

// Warn records a warning.
func (o *IO) Warn(format string, a ...any) {
	o.warnings = append(o.warnings, fmt.Sprintf(format, a...))
}

// WarnStream records a warning if s has faulted beyond the expectedEOF
// plain ends of stream the caller ran into on purpose.
func (o *IO) WarnStream(s *stream.Stream, expectedEOF int) {
	faults := s.Errors() - expectedEOF
	err := s.Err()

	if faults <= 0 && (err == nil || errors.Is(err, io.EOF)) {
		return
	}

	o.Warn("%s: %d stream fault(s), last: %v", s.Path(), max(faults, 1), err)
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish prints warnings to stderr and returns exit code.
// Returns 1 if any warnings, 0 otherwise.
func (o *IO) Finish() int {
	o.flushWarningsStart()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
