package stream

import (
	"fmt"
	"os"
)

// DefaultPerm is the permission new files are created with (before umask).
const DefaultPerm os.FileMode = 0o644

// modeFlags maps every accepted mode string to its open flags.
var modeFlags = map[string]int{
	"r":  os.O_RDONLY,
	"r+": os.O_RDWR | os.O_CREATE,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_APPEND | os.O_CREATE,
	"a+": os.O_RDWR | os.O_APPEND | os.O_CREATE,
}

// ParseMode returns the open flags for a mode string.
//
//	mode  access      creation / position
//	r     read-only   must exist
//	r+    read-write  create if missing
//	w     write-only  create, truncate
//	w+    read-write  create, truncate
//	a     write-only  create, append
//	a+    read-write  create, append
//
// Returns an error wrapping [ErrInvalidMode] for anything else.
func ParseMode(mode string) (int, error) {
	flags, ok := modeFlags[mode]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	return flags, nil
}

// Readable reports whether flags permit reading.
func Readable(flags int) bool {
	return flags&(os.O_WRONLY|os.O_RDWR) != os.O_WRONLY
}

// Writable reports whether flags permit writing.
func Writable(flags int) bool {
	return flags&(os.O_WRONLY|os.O_RDWR) != os.O_RDONLY
}
