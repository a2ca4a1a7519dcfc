// Package model provides a deliberately simple, unbuffered in-memory model of
// a stream's publicly observable behavior.
//
// The model applies every byte to the file immediately, so it has no buffer,
// no flushes and no look-ahead. A correct [stream.Stream] must be
// indistinguishable from it through GetChar, PutChar, ReadBlock, WriteBlock,
// Seek, Flush, Tell, EOF and Errors, and the file contents after Close must
// match.
//
// Read-only streams ("r") are not modelled: the real stream accepts writes
// into its buffer and only fails when flushing, which an unbuffered model
// cannot mirror.
package model

import (
	"errors"
	"io"
	"os"
	"slices"

	"github.com/calvinalkan/bufstream/pkg/stream"
)

// ErrUnsupportedMode is returned by [Open] for modes the model does not cover.
var ErrUnsupportedMode = errors.New("model: unsupported mode")

// FileState is the durable content of one file.
type FileState struct {
	Data []byte
}

// NewFile returns a file holding a copy of data.
func NewFile(data []byte) *FileState {
	return &FileState{Data: slices.Clone(data)}
}

// Clone makes a deep copy, preserving nil vs empty.
func (f *FileState) Clone() *FileState {
	if f.Data == nil {
		return &FileState{}
	}

	return &FileState{Data: slices.Clone(f.Data)}
}

// StreamModel is an open stream against a FileState.
//
// Offset is the descriptor offset, Cursor the stream's reported position.
// They differ only in append mode, where writes land at end of file while
// the cursor still advances by one per byte.
type StreamModel struct {
	File     *FileState
	Flags    int
	Offset   int64
	Cursor   int64
	EOF      int
	Errors   int
	IsClosed bool
}

// Open opens file with mode, truncating it for "w" and "w+".
func Open(file *FileState, mode string) (*StreamModel, error) {
	flags, err := stream.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	if !stream.Writable(flags) {
		return nil, ErrUnsupportedMode
	}

	if flags&os.O_TRUNC != 0 {
		file.Data = file.Data[:0]
	}

	return &StreamModel{File: file, Flags: flags}, nil
}

// Close marks the stream closed. Closing twice returns [stream.ErrClosed].
func (m *StreamModel) Close() error {
	if m.IsClosed {
		return stream.ErrClosed
	}

	m.IsClosed = true

	return nil
}

// GetChar mirrors [stream.Stream.GetChar].
func (m *StreamModel) GetChar() int {
	if m.IsClosed {
		return stream.EOF
	}

	if !stream.Readable(m.Flags) || m.Offset >= int64(len(m.File.Data)) {
		return m.fault()
	}

	c := m.File.Data[m.Offset]
	m.Offset++
	m.Cursor++

	return int(c)
}

// PutChar mirrors [stream.Stream.PutChar].
func (m *StreamModel) PutChar(c int) int {
	if m.IsClosed {
		return stream.EOF
	}

	if m.Flags&os.O_APPEND != 0 {
		m.Offset = int64(len(m.File.Data))
	}

	if gap := m.Offset - int64(len(m.File.Data)); gap > 0 {
		m.File.Data = append(m.File.Data, make([]byte, gap)...)
	}

	if m.Offset == int64(len(m.File.Data)) {
		m.File.Data = append(m.File.Data, byte(c))
	} else {
		m.File.Data[m.Offset] = byte(c)
	}

	m.Offset++
	m.Cursor++

	return int(byte(c))
}

// ReadBlock mirrors [stream.Stream.ReadBlock].
func (m *StreamModel) ReadBlock(dst []byte, size, count int) int {
	total, ok := m.blockLen(len(dst), size, count)
	if !ok {
		return 0
	}

	for i := range total {
		c := m.GetChar()
		if c == stream.EOF {
			return 0
		}

		dst[i] = byte(c)
	}

	return count
}

// WriteBlock mirrors [stream.Stream.WriteBlock].
func (m *StreamModel) WriteBlock(src []byte, size, count int) int {
	total, ok := m.blockLen(len(src), size, count)
	if !ok {
		return 0
	}

	for _, c := range src[:total] {
		if m.PutChar(int(c)) == stream.EOF {
			return 0
		}
	}

	return count
}

// Seek mirrors [stream.Stream.Seek].
func (m *StreamModel) Seek(offset int64, whence int) int {
	if m.IsClosed {
		return stream.EOF
	}

	var base int64

	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.Offset
	case io.SeekEnd:
		base = int64(len(m.File.Data))
	default:
		return m.fault()
	}

	pos := base + offset
	if pos < 0 {
		return m.fault()
	}

	m.Offset = pos
	m.Cursor = pos

	return 0
}

// Flush mirrors [stream.Stream.Flush]; the model has nothing to flush.
func (m *StreamModel) Flush() int {
	if m.IsClosed {
		return stream.EOF
	}

	return 0
}

// Tell mirrors [stream.Stream.Tell].
func (m *StreamModel) Tell() int64 {
	if m.IsClosed || m.Cursor < 0 {
		return stream.EOF
	}

	return m.Cursor
}

func (m *StreamModel) fault() int {
	m.EOF++
	m.Errors++

	return stream.EOF
}

func (m *StreamModel) blockLen(avail, size, count int) (int, bool) {
	if m.IsClosed || size < 0 || count < 0 {
		return 0, false
	}

	if size != 0 && count > avail/size {
		return 0, false
	}

	return size * count, true
}
