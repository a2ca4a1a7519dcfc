package stream_test

import (
	"bytes"
	"errors"
	"io"
	"syscall"
	"testing"

	"github.com/calvinalkan/bufstream/pkg/fs"
	"github.com/calvinalkan/bufstream/pkg/stream"
)

func countWrites(events []fs.TraceEvent) int {
	n := 0

	for _, e := range events {
		if e.Op == "file.write" {
			n++
		}
	}

	return n
}

func Test_PutChar_Issues_Exactly_One_Write_When_Buffer_Fills(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{TraceCapacity: 64})
	path := tempPath(t, "one-write.bin")

	s := mustOpen(t, path, "w", stream.WithFS(chaos))
	defer mustClose(t, s)

	putAll(t, s, pattern(stream.BufferSize-1))

	if got := countWrites(chaos.TraceEvents()); got != 0 {
		t.Fatalf("writes before capacity=%d, want 0\ntrace:\n%s", got, chaos.Trace())
	}

	putAll(t, s, []byte{0xff})

	if got, want := countWrites(chaos.TraceEvents()), 1; got != want {
		t.Fatalf("writes at capacity=%d, want %d\ntrace:\n%s", got, want, chaos.Trace())
	}
}

func Test_Open_Returns_ErrOpen_When_Backend_Refuses(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{OpenFailRate: 1})

	s, err := stream.Open(tempPath(t, "refused.txt"), "w", stream.WithFS(chaos))
	if s != nil {
		t.Fatalf("stream=%v, want nil", s)
	}

	if !errors.Is(err, stream.ErrOpen) || !fs.IsChaosErr(err) {
		t.Fatalf("err=%v, want injected error wrapped in %v", err, stream.ErrOpen)
	}
}

func Test_PutChar_Returns_EOF_But_Keeps_Byte_When_Capacity_Flush_Fails(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 7, fs.ChaosConfig{WriteFailRate: 1})
	path := tempPath(t, "capacity-fail.bin")
	data := pattern(stream.BufferSize + 1)

	s := mustOpen(t, path, "w", stream.WithFS(chaos))

	putAll(t, s, data[:stream.BufferSize-1])

	if got, want := s.PutChar(int(data[stream.BufferSize-1])), stream.EOF; got != want {
		t.Fatalf("PutChar at capacity=%d, want EOF", got)
	}

	assertCounters(t, s, 1, 1)

	if !errors.Is(s.Err(), stream.ErrWrite) || !fs.IsChaosErr(s.Err()) {
		t.Fatalf("Err()=%v, want injected %v", s.Err(), stream.ErrWrite)
	}

	// The byte is staged and counted although PutChar reported failure.
	if got, want := s.Tell(), int64(stream.BufferSize); got != want {
		t.Fatalf("Tell()=%d, want %d", got, want)
	}

	// The retry fails again, so nothing more is staged.
	if got, want := s.PutChar(int(data[stream.BufferSize])), stream.EOF; got != want {
		t.Fatalf("PutChar after failed flush=%d, want EOF", got)
	}

	assertCounters(t, s, 2, 2)

	if got, want := s.Tell(), int64(stream.BufferSize); got != want {
		t.Fatalf("Tell()=%d, want %d", got, want)
	}

	chaos.SetMode(fs.ChaosModeNoOp)

	if got, want := s.Flush(), 0; got != want {
		t.Fatalf("Flush()=%d, want %d (err=%v)", got, want, s.Err())
	}

	if got, want := s.PutChar(int(data[stream.BufferSize])), int(data[stream.BufferSize]); got != want {
		t.Fatalf("PutChar after recovery=%d, want %d", got, want)
	}

	mustClose(t, s)

	if got := mustReadFile(t, path); !bytes.Equal(got, data) {
		t.Fatalf("file has %d bytes, want %d identical bytes", len(got), len(data))
	}

	if got, want := chaos.Stats().WriteFails, int64(2); got != want {
		t.Fatalf("WriteFails=%d, want %d", got, want)
	}
}

func Test_Flush_Resumes_After_Silent_Short_Writes(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 42, fs.ChaosConfig{
		PartialWriteRate:     1,
		SilentShortWriteRate: 1,
	})

	want := pattern(3*stream.BufferSize + 11)
	path := tempPath(t, "short-writes.bin")

	s := mustOpen(t, path, "w", stream.WithFS(chaos))

	if got, wantN := s.WriteBlock(want, 1, len(want)), len(want); got != wantN {
		t.Fatalf("WriteBlock=%d, want %d (err=%v)", got, wantN, s.Err())
	}

	mustClose(t, s)
	assertCounters(t, s, 0, 0)

	if got := mustReadFile(t, path); !bytes.Equal(got, want) {
		t.Fatalf("file has %d bytes, want %d identical bytes", len(got), len(want))
	}

	if chaos.Stats().PartialWrites == 0 {
		t.Fatal("expected partial writes to be injected")
	}
}

func Test_GetChar_Returns_Every_Byte_When_Reads_Are_Short(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 3, fs.ChaosConfig{PartialReadRate: 1})

	want := pattern(2*stream.BufferSize + 5)
	path := tempPath(t, "short-reads.bin")
	mustWriteFile(t, path, want)

	s := mustOpen(t, path, "r", stream.WithFS(chaos))
	defer mustClose(t, s)

	got, err := io.ReadAll(s)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("read %d bytes, want %d identical bytes", len(got), len(want))
	}

	if chaos.Stats().PartialReads == 0 {
		t.Fatal("expected partial reads to be injected")
	}
}

func Test_GetChar_Latches_ErrRead_When_Descriptor_Read_Fails(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{ReadFailRate: 1})

	path := tempPath(t, "read-fail.txt")
	mustWriteFile(t, path, []byte("abc"))

	s := mustOpen(t, path, "r", stream.WithFS(chaos))
	defer mustClose(t, s)

	if got, want := s.GetChar(), stream.EOF; got != want {
		t.Fatalf("GetChar()=%d, want EOF", got)
	}

	assertCounters(t, s, 1, 1)

	err := s.Err()
	if !errors.Is(err, stream.ErrRead) || !errors.Is(err, syscall.EIO) {
		t.Fatalf("Err()=%v, want %v wrapping EIO", err, stream.ErrRead)
	}

	if got, want := s.Tell(), int64(0); got != want {
		t.Fatalf("Tell()=%d, want %d", got, want)
	}

	chaos.SetMode(fs.ChaosModeNoOp)

	if got, want := s.GetChar(), int('a'); got != want {
		t.Fatalf("GetChar after recovery=%d, want %d", got, want)
	}
}

func Test_Seek_Keeps_Position_When_Descriptor_Seek_Fails(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{SeekFailRate: 1})

	path := tempPath(t, "seek-fail.txt")
	mustWriteFile(t, path, []byte("abcdef"))

	s := mustOpen(t, path, "r+", stream.WithFS(chaos))
	defer mustClose(t, s)

	if got, want := s.GetChar(), int('a'); got != want {
		t.Fatalf("GetChar()=%d, want %d", got, want)
	}

	if got, want := s.Seek(4, io.SeekStart), stream.EOF; got != want {
		t.Fatalf("Seek=%d, want EOF", got)
	}

	assertCounters(t, s, 1, 1)

	if !errors.Is(s.Err(), stream.ErrSeek) || !fs.IsChaosErr(s.Err()) {
		t.Fatalf("Err()=%v, want injected %v", s.Err(), stream.ErrSeek)
	}

	if got, want := s.Tell(), int64(1); got != want {
		t.Fatalf("Tell()=%d, want %d", got, want)
	}

	// The look-ahead survived the failed seek.
	if got, want := s.GetChar(), int('b'); got != want {
		t.Fatalf("GetChar after failed seek=%d, want %d", got, want)
	}

	// The seek back over the look-ahead fails too; the look-ahead is dropped
	// and the write still succeeds.
	if got, want := s.PutChar('X'), int('X'); got != want {
		t.Fatalf("PutChar=%d, want %d", got, want)
	}

	assertCounters(t, s, 1, 1)

	if got, want := s.Tell(), int64(3); got != want {
		t.Fatalf("Tell() after PutChar=%d, want %d", got, want)
	}
}

func Test_Close_Reports_Flush_And_Close_Failures_Together(t *testing.T) {
	t.Parallel()

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{WriteFailRate: 1, CloseFailRate: 1})

	path := tempPath(t, "close-fail.txt")
	s := mustOpen(t, path, "w", stream.WithFS(chaos))

	putAll(t, s, []byte("lost"))

	err := s.Close()
	if !errors.Is(err, stream.ErrClose) {
		t.Fatalf("Close()=%v, want %v", err, stream.ErrClose)
	}

	if !errors.Is(err, stream.ErrWrite) {
		t.Fatalf("Close()=%v, want it to include the flush failure", err)
	}

	if got, want := chaos.Stats().CloseFails, int64(1); got != want {
		t.Fatalf("CloseFails=%d, want %d", got, want)
	}

	if got, want := s.Close(), stream.ErrClosed; !errors.Is(got, want) {
		t.Fatalf("second Close()=%v, want %v", got, want)
	}

	if got := mustReadFile(t, path); len(got) != 0 {
		t.Fatalf("file=%q, want empty", got)
	}
}
