package stream

// BufferSize is the capacity of a stream's buffer in bytes.
const BufferSize = 4096

// shape says which of the buffer's two states is live.
type shape uint8

const (
	shapeRead shape = iota
	shapeWrite
)

// readState describes look-ahead: data[off:n] has not been consumed yet.
// Invariant: 0 <= off <= n <= BufferSize.
type readState struct {
	off int
	n   int
}

// writeState describes staged output: data[:off] has not reached the
// descriptor yet. Invariant: 0 <= off <= BufferSize.
type writeState struct {
	off int
}

// buffer is the stream's single staging area. Exactly one of rd and wr is
// meaningful, selected by shape; the other is always zero.
type buffer struct {
	data  [BufferSize]byte
	shape shape
	rd    readState
	wr    writeState
}

// resetRead zeroes the buffer and makes it an empty read buffer.
func (b *buffer) resetRead() {
	clear(b.data[:])
	b.shape = shapeRead
	b.rd = readState{}
	b.wr = writeState{}
}

// resetWrite zeroes the buffer and makes it an empty write buffer.
func (b *buffer) resetWrite() {
	clear(b.data[:])
	b.shape = shapeWrite
	b.rd = readState{}
	b.wr = writeState{}
}

func (b *buffer) writing() bool {
	return b.shape == shapeWrite
}

// exhausted reports whether a read buffer has no look-ahead left.
func (b *buffer) exhausted() bool {
	return b.shape == shapeRead && b.rd.off == b.rd.n
}

// lookahead returns the number of loaded but unconsumed bytes.
func (b *buffer) lookahead() int {
	if b.shape != shapeRead {
		return 0
	}

	return b.rd.n - b.rd.off
}

// loaded records that n bytes were read into data[:n].
func (b *buffer) loaded(n int) {
	b.rd = readState{n: n}
}

// next consumes one byte of look-ahead. The caller checks exhausted first.
func (b *buffer) next() byte {
	c := b.data[b.rd.off]
	b.rd.off++

	return c
}

// take consumes up to len(p) bytes of look-ahead into p.
func (b *buffer) take(p []byte) int {
	if b.shape != shapeRead {
		return 0
	}

	n := copy(p, b.data[b.rd.off:b.rd.n])
	b.rd.off += n

	return n
}

// staged returns the bytes waiting to be flushed, or nil for a read buffer.
func (b *buffer) staged() []byte {
	if b.shape != shapeWrite {
		return nil
	}

	return b.data[:b.wr.off]
}

// full reports whether a write buffer has no room left.
func (b *buffer) full() bool {
	return b.shape == shapeWrite && b.wr.off == BufferSize
}

// stage appends c to a write buffer. The caller checks full first.
func (b *buffer) stage(c byte) {
	b.data[b.wr.off] = c
	b.wr.off++
}
