package fs

import "os"

// Real opens descriptors through [os.OpenFile]. Its files never report a
// short write without an error, so it is the portable fallback behind
// [NewDefault] and the reference backend in tests.
type Real struct{}

var _ FS = (*Real)(nil)

// NewReal returns an [os]-backed [FS].
func NewReal() *Real {
	return &Real{}
}

// OpenFile calls [os.OpenFile] unchanged.
func (*Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}
