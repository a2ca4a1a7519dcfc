//go:build unix

package stream_test

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/bufstream/pkg/stream"
)

func Test_Fileno_Refers_To_The_Opened_File(t *testing.T) {
	t.Parallel()

	for name, fsys := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := tempPath(t, "fileno.txt")
			mustWriteFile(t, path, []byte("12345"))

			s := mustOpen(t, path, "r", stream.WithFS(fsys))
			defer mustClose(t, s)

			var st unix.Stat_t

			err := unix.Fstat(int(s.Fileno()), &st)
			if err != nil {
				t.Fatalf("fstat: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}

			if got, want := st.Size, info.Size(); got != want {
				t.Fatalf("fstat size=%d, want %d", got, want)
			}

			var pathSt unix.Stat_t

			err = unix.Stat(path, &pathSt)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}

			if st.Ino != pathSt.Ino {
				t.Fatalf("descriptor inode=%d, path inode=%d", st.Ino, pathSt.Ino)
			}
		})
	}
}
