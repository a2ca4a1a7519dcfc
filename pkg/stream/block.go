package stream

import (
	"fmt"
	"math"
)

// ReadBlock reads count elements of size bytes into dst and returns count,
// or 0 if any byte could not be read.
//
// A failed call still leaves the bytes read before the fault in dst and
// still advances the cursor past them; only the returned count is
// all-or-nothing. Compare [Stream.Tell] before and after the call to learn
// how many bytes arrived.
//
// dst must hold at least size*count bytes; otherwise ReadBlock returns 0 and
// [Stream.Err] wraps [ErrInvalidArgument].
func (s *Stream) ReadBlock(dst []byte, size, count int) int {
	if s.closed {
		s.misuse(ErrClosed)

		return 0
	}

	total, err := blockLen(len(dst), size, count)
	if err != nil {
		s.misuse(err)

		return 0
	}

	err = s.flush()
	if err != nil {
		s.fault("read", err)

		return 0
	}

	s.last = disciplineRead

	for i := range total {
		c := s.GetChar()
		if c == EOF {
			return 0
		}

		dst[i] = byte(c)
	}

	return count
}

// WriteBlock writes count elements of size bytes from src and returns
// count, or 0 if any byte could not be written.
//
// Like [Stream.ReadBlock], a failed call keeps its side effects: bytes before
// the fault are staged (and possibly flushed) and counted by the cursor.
//
// src must hold at least size*count bytes; otherwise WriteBlock returns 0
// and [Stream.Err] wraps [ErrInvalidArgument].
func (s *Stream) WriteBlock(src []byte, size, count int) int {
	if s.closed {
		s.misuse(ErrClosed)

		return 0
	}

	total, err := blockLen(len(src), size, count)
	if err != nil {
		s.misuse(err)

		return 0
	}

	for _, c := range src[:total] {
		if s.PutChar(int(c)) == EOF {
			return 0
		}
	}

	return count
}

// blockLen returns size*count after checking it is representable and fits
// in a slice of length avail.
func blockLen(avail, size, count int) (int, error) {
	if size < 0 || count < 0 {
		return 0, fmt.Errorf("%w: size=%d count=%d", ErrInvalidArgument, size, count)
	}

	if size != 0 && count > math.MaxInt/size {
		return 0, fmt.Errorf("%w: size*count overflows", ErrInvalidArgument)
	}

	total := size * count
	if total > avail {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidArgument, total, avail)
	}

	return total, nil
}
