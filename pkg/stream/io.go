package stream

import "io"

// Interface compliance.
var (
	_ io.Reader     = (*Stream)(nil)
	_ io.Writer     = (*Stream)(nil)
	_ io.ByteReader = (*Stream)(nil)
	_ io.ByteWriter = (*Stream)(nil)
)

// ReadByte implements [io.ByteReader] on top of [Stream.GetChar].
// The returned error is [Stream.Err].
func (s *Stream) ReadByte() (byte, error) {
	c := s.GetChar()
	if c == EOF {
		return 0, s.err
	}

	return byte(c), nil
}

// WriteByte implements [io.ByteWriter] on top of [Stream.PutChar].
//
// An error from a capacity flush is returned although the byte stays
// staged; see [Stream.PutChar].
func (s *Stream) WriteByte(c byte) error {
	if s.PutChar(int(c)) == EOF {
		return s.err
	}

	return nil
}

// Read implements [io.Reader] with the same semantics as [Stream.GetChar]:
// reaching end of stream latches the counters.
//
// Read refills the buffer at most once per call, so it returns what one
// read of the descriptor produced instead of blocking for len(p) bytes.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	c := s.GetChar()
	if c == EOF {
		return 0, s.err
	}

	p[0] = byte(c)

	n := 1 + s.buf.take(p[1:])
	s.cursor += int64(n - 1)

	return n, nil
}

// Write implements [io.Writer] on top of [Stream.PutChar].
//
// The returned count is the number of bytes staged, which can include the
// byte whose capacity flush failed.
func (s *Stream) Write(p []byte) (int, error) {
	start := s.cursor

	for _, c := range p {
		if s.PutChar(int(c)) == EOF {
			return int(s.cursor - start), s.err
		}
	}

	return len(p), nil
}
