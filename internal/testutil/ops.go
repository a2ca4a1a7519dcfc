package testutil

import (
	"fmt"
	"io"
	"strings"
)

// Result is what one operation observably did.
//
// Value is the operation's return value. Data holds bytes handed back to
// the caller (ReadBlock's destination), or nil.
type Result struct {
	Value int64
	Data  []byte
}

// Op is one stream call applied to both sides of a [Harness].
type Op interface {
	ApplyModel(h *Harness) Result
	ApplyReal(h *Harness) Result
	String() string
}

// OpGetChar reads one byte.
type OpGetChar struct{}

func (OpGetChar) ApplyModel(h *Harness) Result { return Result{Value: int64(h.Model.GetChar())} }
func (OpGetChar) ApplyReal(h *Harness) Result  { return Result{Value: int64(h.Real.GetChar())} }
func (OpGetChar) String() string               { return "GetChar()" }

// OpPutChar writes one byte.
type OpPutChar struct {
	C int
}

func (op OpPutChar) ApplyModel(h *Harness) Result { return Result{Value: int64(h.Model.PutChar(op.C))} }
func (op OpPutChar) ApplyReal(h *Harness) Result  { return Result{Value: int64(h.Real.PutChar(op.C))} }
func (op OpPutChar) String() string               { return fmt.Sprintf("PutChar(%#x)", op.C) }

// OpReadBlock reads Size*Count bytes into a fresh slice of length Cap.
type OpReadBlock struct {
	Cap   int
	Size  int
	Count int
}

func (op OpReadBlock) ApplyModel(h *Harness) Result {
	dst := make([]byte, op.Cap)
	n := h.Model.ReadBlock(dst, op.Size, op.Count)

	return Result{Value: int64(n), Data: dst}
}

func (op OpReadBlock) ApplyReal(h *Harness) Result {
	dst := make([]byte, op.Cap)
	n := h.Real.ReadBlock(dst, op.Size, op.Count)

	return Result{Value: int64(n), Data: dst}
}

func (op OpReadBlock) String() string {
	return fmt.Sprintf("ReadBlock(cap=%d, size=%d, count=%d)", op.Cap, op.Size, op.Count)
}

// OpWriteBlock writes Size*Count bytes from Data.
type OpWriteBlock struct {
	Data  []byte
	Size  int
	Count int
}

func (op OpWriteBlock) ApplyModel(h *Harness) Result {
	return Result{Value: int64(h.Model.WriteBlock(op.Data, op.Size, op.Count))}
}

func (op OpWriteBlock) ApplyReal(h *Harness) Result {
	return Result{Value: int64(h.Real.WriteBlock(op.Data, op.Size, op.Count))}
}

func (op OpWriteBlock) String() string {
	return fmt.Sprintf("WriteBlock(len=%d, size=%d, count=%d)", len(op.Data), op.Size, op.Count)
}

// OpSeek repositions the stream.
type OpSeek struct {
	Offset int64
	Whence int
}

func (op OpSeek) ApplyModel(h *Harness) Result {
	return Result{Value: int64(h.Model.Seek(op.Offset, op.Whence))}
}

func (op OpSeek) ApplyReal(h *Harness) Result {
	return Result{Value: int64(h.Real.Seek(op.Offset, op.Whence))}
}

func (op OpSeek) String() string {
	return fmt.Sprintf("Seek(%d, %s)", op.Offset, whenceName(op.Whence))
}

// OpFlush flushes staged writes.
type OpFlush struct{}

func (OpFlush) ApplyModel(h *Harness) Result { return Result{Value: int64(h.Model.Flush())} }
func (OpFlush) ApplyReal(h *Harness) Result  { return Result{Value: int64(h.Real.Flush())} }
func (OpFlush) String() string               { return "Flush()" }

// OpTell reports the logical position.
type OpTell struct{}

func (OpTell) ApplyModel(h *Harness) Result { return Result{Value: h.Model.Tell()} }
func (OpTell) ApplyReal(h *Harness) Result  { return Result{Value: h.Real.Tell()} }
func (OpTell) String() string               { return "Tell()" }

func whenceName(whence int) string {
	switch whence {
	case io.SeekStart:
		return "SeekStart"
	case io.SeekCurrent:
		return "SeekCurrent"
	case io.SeekEnd:
		return "SeekEnd"
	default:
		return fmt.Sprintf("whence(%d)", whence)
	}
}

// FormatOps renders an op history with the last entry marked as the point
// of divergence.
func FormatOps(ops []string) string {
	if len(ops) == 0 {
		return "Operations: (none)"
	}

	var b strings.Builder

	b.WriteString("Operations:")

	for i, op := range ops {
		b.WriteString("\n")

		if i == len(ops)-1 {
			b.WriteString("→ ")
			b.WriteString(op)
			b.WriteString("  ← divergence")
		} else {
			b.WriteString("  ")
			b.WriteString(op)
		}
	}

	return b.String()
}
