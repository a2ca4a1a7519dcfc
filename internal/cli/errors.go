package cli

import "errors"

// Error variables for command-line handling.
var (
	ErrFlagRequiresArg = errors.New("flag requires an argument")
	ErrUnknownFlag     = errors.New("unknown flag")
	ErrFileRequired    = errors.New("file argument is required")
	ErrTooManyArgs     = errors.New("too many arguments")
	ErrInvalidBlock    = errors.New("block size must be positive")
	ErrInterrupted     = errors.New("interrupted")
	ErrStreamFailed    = errors.New("stream operation failed")
)
