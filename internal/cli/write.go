package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bufstream/internal/config"
	"github.com/calvinalkan/bufstream/pkg/stream"
)

// WriteCmd returns the write command.
func WriteCmd(cfg *config.Config, opts []stream.Option) *Command {
	fs := flag.NewFlagSet("write", flag.ContinueOnError)
	mode := fs.StringP("mode", "m", "w", "Open mode: w, w+, a, a+ or r+")
	seek := fs.Int64P("seek", "s", -1, "Seek to this offset before writing")

	return &Command{
		Flags: fs,
		Usage: "write [flags] <file>",
		Short: "Write stdin to a file",
		Long: `Copy standard input into <file> through a buffered stream and report
the number of bytes written and the final position.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execWrite(ctx, io, cfg, opts, *mode, *seek, args)
		},
	}
}

func execWrite(ctx context.Context, o *IO, cfg *config.Config, opts []stream.Option, mode string, seek int64, args []string) error {
	if len(args) == 0 {
		return ErrFileRequired
	}

	if len(args) > 1 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, args[1:])
	}

	s, err := stream.Open(resolvePath(cfg, args[0]), mode, opts...)
	if err != nil {
		return err
	}

	if seek >= 0 && s.Seek(seek, io.SeekStart) == stream.EOF {
		_ = s.Close()

		return fmt.Errorf("%w: seek %d: %w", ErrStreamFailed, seek, s.Err())
	}

	n, copyErr := io.Copy(s, ctxReader{ctx: ctx, r: o.In()})
	pos := s.Tell()

	closeErr := s.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return err
	}

	o.Printf("wrote %d bytes, position %d\n", n, pos)

	return nil
}

// ctxReader stops reading once ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r ctxReader) Read(p []byte) (int, error) {
	if r.ctx.Err() != nil {
		return 0, ErrInterrupted
	}

	return r.r.Read(p)
}
