//go:build unix

package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func Test_Sys_Opens_Descriptor_With_Close_On_Exec(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cloexec.txt")

	f, err := NewSys().OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	flags, err := unix.FcntlInt(f.Fd(), unix.F_GETFD, 0)
	if err != nil {
		t.Fatalf("fcntl: %v", err)
	}

	if flags&unix.FD_CLOEXEC == 0 {
		t.Fatalf("FD_CLOEXEC not set (flags=%#x)", flags)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got&^want != 0 {
		t.Fatalf("perm=%v, want at most %v", got, want)
	}
}

func Test_Sys_Returns_PathError_When_Open_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "file.txt")

	_, err := NewSys().OpenFile(path, os.O_RDONLY, 0)

	var pathErr *iofs.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("err=%T %v, want *fs.PathError", err, err)
	}

	if pathErr.Op != "open" || pathErr.Path != path {
		t.Fatalf("PathError=%+v, want op=open path=%s", pathErr, path)
	}

	if !errors.Is(err, unix.ENOENT) {
		t.Fatalf("err=%v, want ENOENT", err)
	}
}

func Test_SysFile_Rejects_Calls_When_Closed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "closed.txt")
	mustWriteFile(t, path, []byte("x"))

	f, err := NewSys().OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := f.Read(make([]byte, 1)); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("Read err=%v, want %v", err, os.ErrClosed)
	}

	if _, err := f.Write([]byte("y")); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("Write err=%v, want %v", err, os.ErrClosed)
	}

	if _, err := f.Seek(0, 0); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("Seek err=%v, want %v", err, os.ErrClosed)
	}

	if got, want := f.Fd(), ^uintptr(0); got != want {
		t.Fatalf("Fd()=%d, want %d", got, want)
	}
}

func Test_SysFile_Read_Returns_Zero_Without_Error_When_Buffer_Is_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty-buf.txt")
	mustWriteFile(t, path, []byte("abc"))

	f, err := NewSys().OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	n, err := f.Read(nil)
	if n != 0 || err != nil {
		t.Fatalf("Read(nil)=(%d, %v), want (0, nil)", n, err)
	}
}
