package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/calvinalkan/bufstream/pkg/fs"
)

// EOF is the sentinel returned by byte and position operations on failure.
// It means "end of stream or error"; see [Stream.Err] to tell them apart.
const EOF = -1

// discipline records which kind of operation last touched the buffer.
type discipline uint8

const (
	disciplineNone discipline = iota
	disciplineRead
	disciplineWrite
)

func (d discipline) String() string {
	switch d {
	case disciplineRead:
		return "read"
	case disciplineWrite:
		return "write"
	default:
		return "none"
	}
}

// Stream is a buffered stream over one open descriptor.
//
// The zero value is not usable; create streams with [Open].
type Stream struct {
	file  fs.File
	path  string
	mode  string
	flags int
	log   *slog.Logger

	buf    buffer
	cursor int64
	last   discipline

	eof  int
	errs int
	err  error

	closed bool
}

// Open opens path with the given mode (see [ParseMode]) and returns a stream
// positioned at offset 0 with an empty buffer.
//
// An unrecognized mode fails with [ErrInvalidMode] before the backend is
// touched. A failed open returns an error wrapping [ErrOpen] and the OS error.
func Open(path, mode string, opts ...Option) (*Stream, error) {
	flags, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	o := applyOptions(opts)

	file, err := o.fs.OpenFile(path, flags, DefaultPerm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	s := &Stream{
		file:  file,
		path:  path,
		mode:  mode,
		flags: flags,
		log:   o.logger.With("path", path),
	}
	s.buf.resetRead()

	s.log.Debug("stream opened", "mode", mode, "fd", file.Fd())

	return s, nil
}

// Close flushes staged writes and releases the descriptor. The descriptor
// is released even when the flush fails.
//
// Returns an error wrapping [ErrClose] and every underlying failure. The
// stream is unusable afterwards whatever the outcome.
func (s *Stream) Close() error {
	if s.closed {
		return ErrClosed
	}

	s.closed = true

	flushErr := s.flush()
	closeErr := s.file.Close()

	s.buf.resetRead()

	err := errors.Join(flushErr, closeErr)
	if err != nil {
		s.log.Debug("stream closed with errors", "err", err)

		return fmt.Errorf("%w: %w", ErrClose, err)
	}

	s.log.Debug("stream closed")

	return nil
}

// Flush writes staged bytes to the descriptor. It is a no-op unless the
// buffer holds staged writes.
//
// Returns 0, or [EOF] if the descriptor failed; the staged bytes are kept
// in that case. A failure after a partial write still keeps every staged
// byte, so a later successful flush writes that prefix again.
func (s *Stream) Flush() int {
	if s.closed {
		return s.misuse(ErrClosed)
	}

	err := s.flush()
	if err != nil {
		return s.fault("flush", err)
	}

	return 0
}

// GetChar returns the next byte as an int in [0, 255], or [EOF].
//
// Staged writes are flushed first. When the look-ahead is used up, one
// read of up to [BufferSize] bytes refills it from the descriptor's current
// offset; a read returning nothing is end of stream.
func (s *Stream) GetChar() int {
	if s.closed {
		return s.misuse(ErrClosed)
	}

	err := s.flush()
	if err != nil {
		return s.fault("getc", err)
	}

	if s.buf.exhausted() {
		err := s.refill()
		if err != nil {
			return s.fault("getc", err)
		}
	}

	c := s.buf.next()
	s.cursor++
	s.last = disciplineRead

	return int(c)
}

// PutChar stages byte(c) and returns it as an int in [0, 255], or [EOF].
//
// Unconsumed look-ahead is discarded first. On a seekable descriptor the
// descriptor moves back to the logical position; on a pipe, FIFO or other
// descriptor that cannot seek the look-ahead is dropped and the write goes
// wherever the descriptor is. When the byte fills the buffer it is flushed
// immediately; if that flush fails PutChar returns [EOF] although the byte
// stays staged and counted. The next PutChar retries the flush before
// staging anything else.
func (s *Stream) PutChar(c int) int {
	if s.closed {
		return s.misuse(ErrClosed)
	}

	switch {
	case !s.buf.writing():
		s.discardLookahead()
		s.buf.resetWrite()

	case s.buf.full():
		err := s.flush()
		if err != nil {
			return s.fault("putc", err)
		}

		s.buf.resetWrite()
	}

	b := byte(c)

	s.buf.stage(b)
	s.cursor++
	s.last = disciplineWrite

	if s.buf.full() {
		err := s.flush()
		if err != nil {
			return s.fault("putc", err)
		}

		s.buf.resetWrite()
	}

	return int(b)
}

// Seek repositions the descriptor using [io.SeekStart], [io.SeekCurrent] or
// [io.SeekEnd] and sets the cursor to the resulting absolute offset.
//
// Staged writes are flushed first and look-ahead is discarded. Relative
// seeks are measured from the logical position, not from the end of the
// look-ahead.
//
// Returns 0, or [EOF] if the flush or the reposition failed. A failed
// reposition leaves the descriptor where it was, so the look-ahead is kept
// and the cursor is unchanged.
func (s *Stream) Seek(offset int64, whence int) int {
	if s.closed {
		return s.misuse(ErrClosed)
	}

	err := s.flush()
	if err != nil {
		return s.fault("seek", err)
	}

	if whence == io.SeekCurrent {
		offset -= int64(s.buf.lookahead())
	}

	pos, err := s.file.Seek(offset, whence)
	if err != nil {
		return s.fault("seek", fmt.Errorf("%w: %w", ErrSeek, err))
	}

	s.buf.resetRead()
	s.last = disciplineNone
	s.cursor = pos

	return 0
}

// Tell returns the logical position, or [EOF] if it is negative or the
// stream is closed.
func (s *Stream) Tell() int64 {
	if s.closed || s.cursor < 0 {
		return EOF
	}

	return s.cursor
}

// Fileno returns the underlying descriptor.
func (s *Stream) Fileno() uintptr {
	return s.file.Fd()
}

// EOF returns how many times end of stream (or an error) was hit. Any
// nonzero value means EOF was reached at least once.
func (s *Stream) EOF() int {
	return s.eof
}

// Errors returns how many faults the stream has recorded.
func (s *Stream) Errors() int {
	return s.errs
}

// Err returns the most recent failure, or nil if nothing failed yet.
//
// It is [io.EOF] for a plain end of stream, wraps [ErrRead], [ErrWrite] or
// [ErrSeek] for descriptor faults, and is [ErrClosed] or wraps
// [ErrInvalidArgument] for misuse.
func (s *Stream) Err() error {
	return s.err
}

// Path returns the path the stream was opened with.
func (s *Stream) Path() string {
	return s.path
}

// Mode returns the mode string the stream was opened with.
func (s *Stream) Mode() string {
	return s.mode
}

// flush writes the staged bytes, resuming after short writes. On success
// the buffer becomes an empty read buffer; the discipline is left alone.
// On failure the buffer is untouched.
func (s *Stream) flush() error {
	staged := s.buf.staged()
	if staged == nil {
		return nil
	}

	for written := 0; written < len(staged); {
		n, err := s.file.Write(staged[written:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}

		if n <= 0 {
			return fmt.Errorf("%w: %w", ErrWrite, io.ErrShortWrite)
		}

		written += n
	}

	s.log.Debug("flushed", "bytes", len(staged))

	s.buf.resetRead()

	return nil
}

// refill loads the buffer with one read. Bytes returned together with an
// error are kept; the error comes back on the next read.
func (s *Stream) refill() error {
	n, err := s.file.Read(s.buf.data[:])
	if n > 0 {
		s.buf.loaded(n)

		return nil
	}

	if err == nil || errors.Is(err, io.EOF) {
		return io.EOF
	}

	return fmt.Errorf("%w: %w", ErrRead, err)
}

// discardLookahead moves the descriptor back over unconsumed look-ahead so
// that it matches the logical position again. If the descriptor cannot
// seek, the look-ahead is simply dropped; that is not a fault.
func (s *Stream) discardLookahead() {
	ahead := s.buf.lookahead()
	if ahead == 0 {
		return
	}

	_, err := s.file.Seek(-int64(ahead), io.SeekCurrent)
	if err != nil {
		s.log.Debug("dropped look-ahead without seek", "bytes", ahead, "err", err)

		return
	}

	s.log.Debug("discarded look-ahead", "bytes", ahead)
}

// fault latches end of stream and error together and returns [EOF].
func (s *Stream) fault(op string, err error) int {
	if s.eof < math.MaxInt {
		s.eof++
	}

	if s.errs < math.MaxInt {
		s.errs++
	}

	s.err = err

	s.log.Debug("fault", "op", op, "err", err, "discipline", s.last, "eof", s.eof)

	return EOF
}

// misuse records err without touching the counters and returns [EOF].
func (s *Stream) misuse(err error) int {
	s.err = err

	return EOF
}
