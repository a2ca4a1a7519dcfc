//go:build unix

package fs

// sys_unix.go implements the raw-descriptor backend. Every File method maps
// to exactly one syscall (plus EINTR retries), so callers see the kernel's
// own short writes and offsets instead of the os package's smoothing.

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Sys implements [FS] with raw syscalls on an int descriptor.
//
// Differences from [Real]:
//   - Write returns whatever write(2) returned, including short writes with
//     a nil error.
//   - The descriptor is opened with O_CLOEXEC and is never registered with
//     the runtime poller.
type Sys struct{}

// NewSys returns a new [Sys] filesystem.
func NewSys() *Sys {
	return &Sys{}
}

// NewDefault returns the backend streams use when none is configured.
// On unix this is [Sys].
func NewDefault() FS {
	return NewSys()
}

// OpenFile opens path with open(2).
func (s *Sys) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	// Retry on EINTR without an upper bound, matching Go's standard library.
	for {
		fd, err := unix.Open(path, flag|unix.O_CLOEXEC, uint32(perm.Perm()))
		if errors.Is(err, syscall.EINTR) {
			continue
		}

		if err != nil {
			return nil, &iofs.PathError{Op: "open", Path: path, Err: err}
		}

		return &sysFile{fd: fd, name: path}, nil
	}
}

var _ FS = (*Sys)(nil)

// sysFile is an open raw descriptor. fd is -1 after Close.
type sysFile struct {
	fd   int
	name string
}

var _ File = (*sysFile)(nil)

func (f *sysFile) Read(buf []byte) (int, error) {
	if f.fd < 0 {
		return 0, f.pathErr("read", os.ErrClosed)
	}

	if len(buf) == 0 {
		return 0, nil
	}

	for {
		n, err := unix.Read(f.fd, buf)
		if errors.Is(err, syscall.EINTR) {
			continue
		}

		if err != nil {
			return 0, f.pathErr("read", err)
		}

		if n <= 0 {
			return 0, io.EOF
		}

		return n, nil
	}
}

func (f *sysFile) Write(data []byte) (int, error) {
	if f.fd < 0 {
		return 0, f.pathErr("write", os.ErrClosed)
	}

	for {
		n, err := unix.Write(f.fd, data)
		if errors.Is(err, syscall.EINTR) {
			continue
		}

		if n < 0 {
			n = 0
		}

		if err != nil {
			return n, f.pathErr("write", err)
		}

		return n, nil
	}
}

func (f *sysFile) Seek(offset int64, whence int) (int64, error) {
	if f.fd < 0 {
		return 0, f.pathErr("seek", os.ErrClosed)
	}

	pos, err := unix.Seek(f.fd, offset, whence)
	if err != nil {
		return 0, f.pathErr("seek", err)
	}

	return pos, nil
}

// Close releases the descriptor exactly once. A second Close reports
// [os.ErrClosed]. close(2) is not retried on EINTR: on Linux the
// descriptor is already gone by then.
func (f *sysFile) Close() error {
	if f.fd < 0 {
		return f.pathErr("close", os.ErrClosed)
	}

	fd := f.fd
	f.fd = -1

	err := unix.Close(fd)
	if err != nil {
		return f.pathErr("close", err)
	}

	return nil
}

func (f *sysFile) Fd() uintptr {
	return uintptr(f.fd)
}

func (f *sysFile) pathErr(op string, err error) error {
	return &iofs.PathError{Op: op, Path: f.name, Err: err}
}
