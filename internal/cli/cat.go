package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bufstream/internal/config"
	"github.com/calvinalkan/bufstream/pkg/stream"
)

// CatCmd returns the cat command.
func CatCmd(cfg *config.Config, opts []stream.Option) *Command {
	return &Command{
		Flags: flag.NewFlagSet("cat", flag.ContinueOnError),
		Usage: "cat <file>...",
		Short: "Print files byte by byte",
		Long: `Print each file to stdout, reading one byte at a time through a
buffered stream. A read fault stops the file and is reported as a warning.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execCat(ctx, io, cfg, opts, args)
		},
	}
}

func execCat(ctx context.Context, io *IO, cfg *config.Config, opts []stream.Option, args []string) error {
	if len(args) == 0 {
		return ErrFileRequired
	}

	for _, name := range args {
		err := catFile(ctx, io, resolvePath(cfg, name), opts)
		if err != nil {
			return err
		}
	}

	return nil
}

func catFile(ctx context.Context, io *IO, path string, opts []stream.Option) error {
	s, err := stream.Open(path, "r", opts...)
	if err != nil {
		return err
	}

	out := io.Out()
	chunk := make([]byte, 0, stream.BufferSize)

	for {
		c := s.GetChar()
		if c != stream.EOF {
			chunk = append(chunk, byte(c))
		}

		if len(chunk) == cap(chunk) || c == stream.EOF {
			_, err := out.Write(chunk)
			if err != nil {
				_ = s.Close()

				return fmt.Errorf("write stdout: %w", err)
			}

			chunk = chunk[:0]

			if ctx.Err() != nil {
				_ = s.Close()

				return ErrInterrupted
			}
		}

		if c == stream.EOF {
			break
		}
	}

	io.WarnStream(s, 1)

	return s.Close()
}
