package stream

import (
	"log/slog"

	"github.com/calvinalkan/bufstream/pkg/fs"
)

// Option configures [Open]. Options are applied in order.
type Option func(*options)

type options struct {
	fs     fs.FS
	logger *slog.Logger
}

// WithFS sets the backend descriptors are opened through.
//
// # Default
//
// [fs.NewDefault]: raw syscalls on unix, the os package elsewhere.
//
// Tests pass an [fs.Chaos] here to inject descriptor faults. A nil FS
// uses the default.
func WithFS(fsys fs.FS) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithLogger sets the logger used for debug events (flushes, refills,
// faults). The stream never logs above debug level.
//
// A nil logger discards everything, which is also the default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	if o.fs == nil {
		o.fs = fs.NewDefault()
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	return o
}
