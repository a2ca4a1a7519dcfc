package testutil

import (
	"io"

	"github.com/calvinalkan/bufstream/pkg/stream"
)

// Modes the model covers. "r" is excluded; see package model.
var modelModes = []string{"r+", "w", "w+", "a", "a+"}

// OpGenConfig configures the operation generator. Rates are percentages of
// generated ops; whatever is left over becomes Tell.
type OpGenConfig struct {
	GetCharRate    int
	PutCharRate    int
	ReadBlockRate  int
	WriteBlockRate int
	SeekRate       int
	FlushRate      int

	// InvalidRate is the percentage of block and seek ops generated with
	// arguments the stream must reject.
	InvalidRate int

	// MaxInitial bounds the size of the generated initial file content.
	MaxInitial int
}

// DefaultOpGenConfig returns a configuration that crosses buffer
// boundaries often and keeps switching between reading and writing.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{
		GetCharRate:    25,
		PutCharRate:    25,
		ReadBlockRate:  12,
		WriteBlockRate: 12,
		SeekRate:       12,
		FlushRate:      7,
		InvalidRate:    10,
		MaxInitial:     3 * stream.BufferSize,
	}
}

// OpGenerator derives a deterministic op sequence from fuzz bytes.
type OpGenerator struct {
	stream *ByteStream
	config OpGenConfig
}

// NewOpGenerator creates a generator over fuzzBytes.
func NewOpGenerator(fuzzBytes []byte, cfg *OpGenConfig) *OpGenerator {
	return &OpGenerator{
		stream: NewByteStream(fuzzBytes),
		config: *cfg,
	}
}

// HasMore reports whether more operations can be generated.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextSetup picks the open mode and the file's initial content.
func (g *OpGenerator) NextSetup() (string, []byte) {
	mode := modelModes[g.stream.NextInt(len(modelModes))]

	n := g.stream.NextSize(g.config.MaxInitial + 1)
	seed := g.stream.NextByte()

	initial := make([]byte, n)
	for i := range initial {
		initial[i] = seed + byte(i*31)
	}

	return mode, initial
}

// NextOp generates the next operation.
func (g *OpGenerator) NextOp() Op {
	choice := g.stream.NextInt(100)

	cumulative := 0

	cumulative += g.config.GetCharRate
	if choice < cumulative {
		return OpGetChar{}
	}

	cumulative += g.config.PutCharRate
	if choice < cumulative {
		return OpPutChar{C: int(g.stream.NextByte())}
	}

	cumulative += g.config.ReadBlockRate
	if choice < cumulative {
		return g.genReadBlock()
	}

	cumulative += g.config.WriteBlockRate
	if choice < cumulative {
		return g.genWriteBlock()
	}

	cumulative += g.config.SeekRate
	if choice < cumulative {
		return g.genSeek()
	}

	cumulative += g.config.FlushRate
	if choice < cumulative {
		return OpFlush{}
	}

	return OpTell{}
}

func (g *OpGenerator) genReadBlock() Op {
	size := 1 + g.stream.NextInt(16)
	count := g.stream.NextSize(2*stream.BufferSize/size + 1)
	capacity := size * count

	if g.shouldBeInvalid() {
		capacity = max(0, capacity-1-g.stream.NextInt(size))
	}

	return OpReadBlock{Cap: capacity, Size: size, Count: count}
}

func (g *OpGenerator) genWriteBlock() Op {
	size := 1 + g.stream.NextInt(16)
	count := g.stream.NextSize(2*stream.BufferSize/size + 1)
	data := g.fill(size * count)

	if g.shouldBeInvalid() {
		return OpWriteBlock{Data: data, Size: -size, Count: count}
	}

	return OpWriteBlock{Data: data, Size: size, Count: count}
}

func (g *OpGenerator) genSeek() Op {
	whences := []int{io.SeekStart, io.SeekCurrent, io.SeekEnd}
	whence := whences[g.stream.NextInt(len(whences))]

	offset := int64(g.stream.NextSize(2 * stream.BufferSize))
	if whence != io.SeekStart && g.stream.NextBool() {
		offset = -offset
	}

	if g.shouldBeInvalid() {
		if g.stream.NextBool() {
			return OpSeek{Offset: offset, Whence: 7}
		}

		return OpSeek{Offset: -1 - offset, Whence: io.SeekStart}
	}

	return OpSeek{Offset: offset, Whence: whence}
}

// fill produces n bytes cheaply: one seed byte from the stream, the rest
// derived from it.
func (g *OpGenerator) fill(n int) []byte {
	seed := g.stream.NextByte()

	out := make([]byte, n)
	for i := range out {
		out[i] = seed ^ byte(i)
	}

	return out
}

func (g *OpGenerator) shouldBeInvalid() bool {
	return g.stream.NextInt(100) < g.config.InvalidRate
}
