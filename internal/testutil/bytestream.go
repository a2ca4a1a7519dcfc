package testutil

// ByteStream hands out values derived from a fixed byte slice, one byte at a
// time. Fuzz tests use it to turn arbitrary input into a deterministic
// sequence of choices.
//
// Once the input is used up every call yields the zero value, so the same
// input always decodes to the same sequence.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over b. The slice is not copied.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 once exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextBytes returns n bytes, zero padded once exhausted.
func (s *ByteStream) NextBytes(n int) []byte {
	if n <= 0 {
		return []byte{}
	}

	out := make([]byte, n)
	for i := range out {
		out[i] = s.NextByte()
	}

	return out
}

// NextInt returns a value in [0, maxVal) from one byte.
func (s *ByteStream) NextInt(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextByte()) % maxVal
}

// NextUint16 returns a little-endian value from two bytes.
func (s *ByteStream) NextUint16() uint16 {
	lo := uint16(s.NextByte())
	hi := uint16(s.NextByte())

	return hi<<8 | lo
}

// NextSize returns a value in [0, maxVal) from two bytes, for lengths and
// offsets that need to reach past one buffer.
func (s *ByteStream) NextSize(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextUint16()) % maxVal
}

// NextBool returns a boolean from the low bit of the next byte.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}
