package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"math/rand/v2"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig sets fault probabilities for [Chaos], each in [0, 1].
// The zero value injects nothing.
type ChaosConfig struct {
	// OpenFailRate fails OpenFile. Opens that may create or modify the file
	// can also see ENOSPC, EDQUOT and EROFS.
	OpenFailRate float64

	// ReadFailRate fails Read with zero bytes and EIO.
	ReadFailRate float64

	// PartialReadRate shortens Read by asking the wrapped file for fewer
	// bytes, so no data is skipped.
	PartialReadRate float64

	// WriteFailRate fails Write with zero bytes written.
	WriteFailRate float64

	// PartialWriteRate writes only a prefix. What the caller sees is picked
	// by SilentShortWriteRate, then ShortWriteRate, else an errno.
	PartialWriteRate float64

	// SilentShortWriteRate is the share of partial writes reported as
	// (n, nil), the way write(2) does it.
	SilentShortWriteRate float64

	// ShortWriteRate is the share of the remaining partial writes reported
	// as io.ErrShortWrite.
	ShortWriteRate float64

	// SeekFailRate fails Seek with position 0 and EIO.
	SeekFailRate float64

	// CloseFailRate makes Close report EIO. The descriptor is closed anyway.
	CloseFailRate float64

	// TraceCapacity bounds the operation trace. 0 disables tracing.
	TraceCapacity int
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive injects faults at the configured rates. It is the
	// mode of a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation straight through.
	ChaosModeNoOp
)

// ChaosStats counts injected faults by kind.
type ChaosStats struct {
	OpenFails     int64
	ReadFails     int64
	PartialReads  int64
	WriteFails    int64
	PartialWrites int64
	SeekFails     int64
	CloseFails    int64
}

// fault is one kind of injected misbehavior.
type fault int

const (
	faultOpen fault = iota
	faultRead
	faultPartialRead
	faultWrite
	faultPartialWrite
	faultSeek
	faultClose

	numFaults
)

// chaosError marks an injected error. It unwraps to the real errno.
type chaosError struct {
	Err error
}

func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err, or anything it wraps, was injected by
// [Chaos]. It is false for nil.
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps an [FS] and injects descriptor faults for tests.
//
// Injected errors are [*fs.PathError] values carrying a real
// [syscall.Errno], wrapped so [IsChaosErr] can spot them; [errors.Is]
// against the errno still works. ENOENT, EINTR and EOF are never injected.
//
// Failed reads and seeks return 0. A write may return partial progress with
// an error, or a short count with a nil error. Close always releases the
// wrapped file, even when it reports an injected error.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32
	trace  *chaosTrace

	rngMu sync.Mutex
	rng   *rand.Rand

	counts [numFaults]atomic.Int64
}

var _ FS = (*Chaos)(nil)

// NewChaos wraps underlying. seed makes the fault sequence reproducible.
// Panics if underlying is nil.
func NewChaos(underlying FS, seed int64, config ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying fs is nil")
	}

	return &Chaos{
		fs:     underlying,
		config: config,
		trace:  newChaosTrace(config.TraceCapacity),
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
	}
}

// SetMode switches between injecting and passing through. Safe for
// concurrent use with file operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Trace returns recent operations, one per line, or "" when tracing is off.
func (c *Chaos) Trace() string {
	return c.trace.String()
}

// TraceEvents returns a copy of the trace, oldest first, or nil when
// tracing is off.
func (c *Chaos) TraceEvents() []TraceEvent {
	return c.trace.snapshot()
}

// Stats returns injected fault counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		OpenFails:     c.counts[faultOpen].Load(),
		ReadFails:     c.counts[faultRead].Load(),
		PartialReads:  c.counts[faultPartialRead].Load(),
		WriteFails:    c.counts[faultWrite].Load(),
		PartialWrites: c.counts[faultPartialWrite].Load(),
		SeekFails:     c.counts[faultSeek].Load(),
		CloseFails:    c.counts[faultClose].Load(),
	}
}

// TotalFaults returns the number of injected faults of any kind.
func (c *Chaos) TotalFaults() int64 {
	var total int64

	for i := range c.counts {
		total += c.counts[i].Load()
	}

	return total
}

// OpenFile opens path through the wrapped FS unless an open fault fires.
func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	op := "open"
	errnos := openErrnos
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		op = "create"
		errnos = createErrnos
	}

	if c.inject(faultOpen) {
		errno := c.pick(errnos)
		err := injected("open", path, errno)

		c.trace.add(op, path, "fail", err, true, TraceAttr{"errno", errno.Error()})

		return nil, err
	}

	file, err := c.fs.OpenFile(path, flag, perm)
	if err != nil {
		c.trace.add(op, path, "fail", err, false)

		return nil, err
	}

	c.trace.add(op, path, "ok", nil, false, TraceAttr{"flag", fmt.Sprintf("%#x", flag)})

	return &chaosFile{f: file, chaos: c, path: path}, nil
}

var (
	openErrnos = []syscall.Errno{
		syscall.EACCES, syscall.EIO, syscall.EMFILE, syscall.ENFILE, syscall.ENOTDIR,
	}
	createErrnos = append(append([]syscall.Errno(nil), openErrnos...),
		syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS)
	writeErrnos = []syscall.Errno{syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}
)

func (c *Chaos) rate(f fault) float64 {
	switch f {
	case faultOpen:
		return c.config.OpenFailRate
	case faultRead:
		return c.config.ReadFailRate
	case faultPartialRead:
		return c.config.PartialReadRate
	case faultWrite:
		return c.config.WriteFailRate
	case faultPartialWrite:
		return c.config.PartialWriteRate
	case faultSeek:
		return c.config.SeekFailRate
	case faultClose:
		return c.config.CloseFailRate
	default:
		return 0
	}
}

// inject rolls for f and counts it when it fires. It never fires in
// [ChaosModeNoOp].
func (c *Chaos) inject(f fault) bool {
	if ChaosMode(c.mode.Load()) == ChaosModeNoOp {
		return false
	}

	r := c.rate(f)
	if r <= 0 || c.float() >= r {
		return false
	}

	c.counts[f].Add(1)

	return true
}

func (c *Chaos) float() float64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return c.rng.Float64()
}

// between returns a random int in [lo, hi).
func (c *Chaos) between(lo, hi int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return lo + c.rng.IntN(hi-lo)
}

func (c *Chaos) pick(errnos []syscall.Errno) syscall.Errno {
	return errnos[c.between(0, len(errnos))]
}

func injected(op, path string, errno syscall.Errno) error {
	return &chaosError{Err: &iofs.PathError{Op: op, Path: path, Err: errno}}
}

// chaosFile is a [File] whose operations roll for faults first.
type chaosFile struct {
	f     File
	chaos *Chaos
	path  string
}

var _ File = (*chaosFile)(nil)

func (cf *chaosFile) Read(buf []byte) (int, error) {
	c := cf.chaos

	if c.inject(faultRead) {
		err := injected("read", cf.path, syscall.EIO)
		c.trace.add("file.read", cf.path, "fail", err, true)

		return 0, err
	}

	want := len(buf)
	short := want > 1 && c.inject(faultPartialRead)

	if short {
		buf = buf[:c.between(1, want)]
	}

	n, err := cf.f.Read(buf)

	switch {
	case short:
		c.trace.add("file.read", cf.path, "short_read", err, true,
			TraceAttr{"n", strconv.Itoa(n)}, TraceAttr{"requested", strconv.Itoa(want)})
	default:
		c.trace.add("file.read", cf.path, outcome(err), err, false, TraceAttr{"n", strconv.Itoa(n)})
	}

	return n, err
}

func (cf *chaosFile) Write(data []byte) (int, error) {
	c := cf.chaos

	if c.inject(faultWrite) {
		errno := c.pick(writeErrnos)
		err := injected("write", cf.path, errno)
		c.trace.add("file.write", cf.path, "fail", err, true, TraceAttr{"errno", errno.Error()})

		return 0, err
	}

	if len(data) < 2 || !c.inject(faultPartialWrite) {
		n, err := cf.f.Write(data)
		c.trace.add("file.write", cf.path, outcome(err), err, false, TraceAttr{"n", strconv.Itoa(n)})

		return n, err
	}

	n, err := cf.f.Write(data[:c.between(1, len(data))])
	if err != nil {
		c.trace.add("file.write", cf.path, "fail", err, false, TraceAttr{"n", strconv.Itoa(n)})

		return n, err
	}

	attrs := []TraceAttr{{"n", strconv.Itoa(n)}, {"requested", strconv.Itoa(len(data))}}

	switch {
	case c.float() < c.config.SilentShortWriteRate:
		c.trace.add("file.write", cf.path, "silent_short_write", nil, true, attrs...)

		return n, nil

	case c.float() < c.config.ShortWriteRate:
		err := &chaosError{Err: io.ErrShortWrite}
		c.trace.add("file.write", cf.path, "short_write", err, true, attrs...)

		return n, err

	default:
		errno := c.pick(writeErrnos)
		err := injected("write", cf.path, errno)
		c.trace.add("file.write", cf.path, "partial_write", err, true,
			append(attrs, TraceAttr{"errno", errno.Error()})...)

		return n, err
	}
}

func (cf *chaosFile) Seek(offset int64, whence int) (int64, error) {
	c := cf.chaos
	attrs := []TraceAttr{
		{"offset", strconv.FormatInt(offset, 10)},
		{"whence", strconv.Itoa(whence)},
	}

	if c.inject(faultSeek) {
		err := injected("seek", cf.path, syscall.EIO)
		c.trace.add("file.seek", cf.path, "fail", err, true, attrs...)

		return 0, err
	}

	pos, err := cf.f.Seek(offset, whence)
	c.trace.add("file.seek", cf.path, outcome(err), err, false,
		append(attrs, TraceAttr{"pos", strconv.FormatInt(pos, 10)})...)

	return pos, err
}

func (cf *chaosFile) Close() error {
	c := cf.chaos
	fail := c.inject(faultClose)

	// The wrapped file is closed first so an injected failure never leaks it.
	err := cf.f.Close()
	if err != nil {
		c.trace.add("file.close", cf.path, "fail", err, false)

		return err
	}

	if fail {
		err := injected("close", cf.path, syscall.EIO)
		c.trace.add("file.close", cf.path, "fail", err, true)

		return err
	}

	c.trace.add("file.close", cf.path, "ok", nil, false)

	return nil
}

func (cf *chaosFile) Fd() uintptr {
	return cf.f.Fd()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	return "fail"
}
