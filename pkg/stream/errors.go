package stream

import "errors"

// Sentinel errors returned by stream operations.
//
// Callers should use [errors.Is]; most are wrapped together with the
// underlying OS error:
//
//	if errors.Is(s.Err(), stream.ErrWrite) {
//	    // the descriptor rejected staged bytes
//	}
var (
	// ErrInvalidMode indicates an unrecognized mode string was passed to [Open].
	// Valid modes are "r", "r+", "w", "w+", "a" and "a+".
	ErrInvalidMode = errors.New("stream: invalid mode")

	// ErrOpen indicates the descriptor could not be opened.
	ErrOpen = errors.New("stream: open failed")

	// ErrRead indicates the descriptor failed a read.
	ErrRead = errors.New("stream: read failed")

	// ErrWrite indicates the descriptor failed while staged bytes were
	// being flushed. The staged bytes are kept.
	ErrWrite = errors.New("stream: write failed")

	// ErrSeek indicates the descriptor could not be repositioned.
	ErrSeek = errors.New("stream: seek failed")

	// ErrClose indicates the final flush or the descriptor release failed.
	// The stream is closed regardless.
	ErrClose = errors.New("stream: close failed")

	// ErrClosed indicates the stream has already been closed.
	//
	// This is a programming error; it does not touch the counters.
	ErrClosed = errors.New("stream: closed")

	// ErrInvalidArgument indicates a negative element size or count, or a
	// slice too short for size*count bytes.
	//
	// This is a programming error; it does not touch the counters.
	ErrInvalidArgument = errors.New("stream: invalid argument")

	// ErrPipeUnsupported is returned by [POpen].
	ErrPipeUnsupported = errors.New("stream: pipe streams are not supported")
)
