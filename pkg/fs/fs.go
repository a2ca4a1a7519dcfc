// Package fs provides the descriptor backends a buffered stream runs on.
//
// The main types are:
//   - [FS]: interface for opening descriptors
//   - [File]: interface for an open descriptor (satisfied by [os.File])
//   - [Sys]: production implementation issuing raw syscalls (unix only)
//   - [Real]: implementation using the [os] package
//   - [Chaos]: testing implementation that injects random failures
//
// Example usage:
//
//	fsys := fs.NewDefault()
//	f, err := fsys.OpenFile("data.bin", os.O_RDWR|os.O_CREATE, 0o644)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// Read, Write and Seek follow [io.Reader], [io.Writer] and [io.Seeker], with
// one relaxation callers must handle: Write may return n < len(p) with a nil
// error (a short write), as the raw write(2) syscall does. [os.File] never
// does this; [Sys] files do.
//
// Read returns (0, [io.EOF]) at end of file.
//
// Fd returns the OS descriptor, valid until Close.
//
// Implementations need not be safe for concurrent use.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr
}

// FS opens descriptors.
//
// Implementations in this package include:
//   - [Sys]: raw open(2)/read(2)/write(2)/lseek(2)/close(2)
//   - [Real]: wraps [os.OpenFile]
//   - [Chaos]: testing use, injects random failures
//
// Paths use OS semantics, not the slash-separated paths of io/fs.
type FS interface {
	// OpenFile opens a file with the given flags and permissions. See [os.OpenFile].
	//
	// Common flags: [os.O_RDONLY], [os.O_WRONLY], [os.O_RDWR],
	// [os.O_APPEND], [os.O_CREATE], [os.O_TRUNC].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
