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

const defaultBlockSize = 512

// CpCmd returns the cp command.
func CpCmd(cfg *config.Config, opts []stream.Option) *Command {
	fs := flag.NewFlagSet("cp", flag.ContinueOnError)
	appendMode := fs.BoolP("append", "a", false, "Append to <dst> instead of truncating it")
	blockSize := fs.IntP("block-size", "b", defaultBlockSize, "Bytes per block")

	return &Command{
		Flags: fs,
		Usage: "cp [flags] <src> <dst>",
		Short: "Copy a file in fixed-size blocks",
		Long: `Copy <src> to <dst> one block at a time with block reads and writes.
The final partial block is recovered from the stream position.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execCp(ctx, io, cfg, opts, cpOptions{appendMode: *appendMode, blockSize: *blockSize}, args)
		},
	}
}

type cpOptions struct {
	appendMode bool
	blockSize  int
}

func execCp(ctx context.Context, o *IO, cfg *config.Config, opts []stream.Option, cp cpOptions, args []string) error {
	if len(args) < 2 {
		return ErrFileRequired
	}

	if len(args) > 2 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, args[2:])
	}

	if cp.blockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlock, cp.blockSize)
	}

	src, err := stream.Open(resolvePath(cfg, args[0]), "r", opts...)
	if err != nil {
		return err
	}

	dstMode := "w"
	if cp.appendMode {
		dstMode = "a"
	}

	dst, err := stream.Open(resolvePath(cfg, args[1]), dstMode, opts...)
	if err != nil {
		_ = src.Close()

		return err
	}

	copyErr := copyBlocks(ctx, src, dst, cp.blockSize)

	o.WarnStream(src, 1)

	return errors.Join(copyErr, dst.Close(), src.Close())
}

// copyBlocks moves whole blocks until ReadBlock reports failure, then
// writes whatever part of the last block arrived.
func copyBlocks(ctx context.Context, src, dst *stream.Stream, blockSize int) error {
	block := make([]byte, blockSize)

	for {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		before := src.Tell()

		if src.ReadBlock(block, blockSize, 1) == 1 {
			if dst.WriteBlock(block, blockSize, 1) != 1 {
				return fmt.Errorf("%w: write %s: %w", ErrStreamFailed, dst.Path(), dst.Err())
			}

			continue
		}

		if err := src.Err(); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: read %s: %w", ErrStreamFailed, src.Path(), err)
		}

		tail := int(src.Tell() - before)
		if tail > 0 && dst.WriteBlock(block, tail, 1) != 1 {
			return fmt.Errorf("%w: write %s: %w", ErrStreamFailed, dst.Path(), dst.Err())
		}

		return nil
	}
}
