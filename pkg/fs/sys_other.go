//go:build !unix

package fs

// NewDefault returns the backend streams use when none is configured.
// Platforms without the raw-syscall backend fall back to [Real].
func NewDefault() FS {
	return NewReal()
}
