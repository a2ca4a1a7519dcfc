package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one bufstream subcommand.
type Command struct {
	// Flags holds the command's own flags. Its name is ignored.
	Flags *flag.FlagSet

	// Usage follows "bufstream" in help output and starts with the command
	// name, e.g. "cp [flags] <src> <dst>".
	Usage string

	// Short is the one-line summary in the command list.
	Short string

	// Long is the help text; Short is used when it is empty.
	Long string

	// Exec runs after flags parsed cleanly, with the positional args.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine is the command's row in the global usage listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-30s %s", c.Usage, c.Short)
}

// PrintHelp writes "bufstream <cmd> --help" output to o's stdout.
func (c *Command) PrintHelp(o *IO) {
	o.Printf("Usage: bufstream %s\n\n", c.Usage)

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags.HasFlags() {
		o.Printf("\nFlags:\n%s", c.Flags.FlagUsagesWrapped(80))
	}
}

// Run parses args, executes the command and returns the exit code. Errors
// go to stderr as "error: ..."; stream warnings collected on o turn a
// successful run into exit code 1.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	err := c.Flags.Parse(args)

	switch {
	case errors.Is(err, flag.ErrHelp):
		c.PrintHelp(o)

		return 0

	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln(fmt.Sprintf("Run 'bufstream %s --help' for usage.", c.Name()))

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}
