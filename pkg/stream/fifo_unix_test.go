//go:build unix

package stream_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/bufstream/pkg/stream"
)

func Test_PutChar_Drops_Lookahead_When_Descriptor_Is_A_FIFO(t *testing.T) {
	t.Parallel()

	for name, fsys := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := tempPath(t, "fifo")

			err := unix.Mkfifo(path, 0o600)
			if err != nil {
				t.Skipf("mkfifo: %v", err)
			}

			// O_RDWR on a FIFO opens without waiting for a peer.
			s := mustOpen(t, path, "r+", stream.WithFS(fsys))
			defer mustClose(t, s)

			for _, c := range []byte("ab") {
				if got, want := s.PutChar(int(c)), int(c); got != want {
					t.Fatalf("PutChar(%q)=%d, want %d", c, got, want)
				}
			}

			if got := s.Flush(); got != 0 {
				t.Fatalf("Flush()=%d, want 0 (err=%v)", got, s.Err())
			}

			if got, want := s.GetChar(), int('a'); got != want {
				t.Fatalf("GetChar()=%d, want %d", got, want)
			}

			// 'b' is look-ahead the FIFO cannot seek back over.
			if got, want := s.PutChar('c'), int('c'); got != want {
				t.Fatalf("PutChar('c')=%d, want %d (err=%v)", got, want, s.Err())
			}

			if got := s.Flush(); got != 0 {
				t.Fatalf("second Flush()=%d, want 0 (err=%v)", got, s.Err())
			}

			if got, want := s.GetChar(), int('c'); got != want {
				t.Fatalf("GetChar() after switch=%d, want %d", got, want)
			}

			assertCounters(t, s, 0, 0)
		})
	}
}
