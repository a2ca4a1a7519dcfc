// Package cli implements the bufstream command-line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/bufstream/internal/config"
	"github.com/calvinalkan/bufstream/pkg/stream"
)

const helpFlag = "--help"

// Run is the main entry point. Returns exit code.
//
// A value on sigCh cancels the running command; commands stop at the next
// chunk boundary and still close their streams.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(in, out, errOut)

	if len(args) == 0 {
		args = []string{"bufstream"}
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:  flags.workDir,
		ConfigPath:       flags.configPath,
		BackendOverride:  flags.backend,
		LogLevelOverride: flags.logLevel,
		Env:              env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	opts := []stream.Option{
		stream.WithFS(cfg.FS()),
		stream.WithLogger(cfg.Logger(errOut)),
	}

	commands := []*Command{
		CatCmd(&cfg, opts),
		CpCmd(&cfg, opts),
		WriteCmd(&cfg, opts),
		ReplCmd(&cfg, opts),
		PrintConfigCmd(&cfg),
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(o, commands)

		return 0
	}

	name := flags.remaining[0]

	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, flags.remaining[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(NewIO(nil, errOut, errOut), commands)

	return 1
}

type globalFlags struct {
	workDir    string
	configPath string
	backend    string
	logLevel   string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// valueFlag is a global flag that takes a value.
type valueFlag struct {
	short string
	long  string
	dst   *string
}

func (f *globalFlags) valueFlags() []valueFlag {
	return []valueFlag{
		{short: "-C", long: "--cwd", dst: &f.workDir},
		{short: "-c", long: "--config", dst: &f.configPath},
		{long: "--backend", dst: &f.backend},
		{long: "--log-level", dst: &f.logLevel},
	}
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args
// consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	for _, vf := range flags.valueFlags() {
		if arg == vf.long || (vf.short != "" && arg == vf.short) {
			if idx+1 >= len(args) {
				return 0, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
			}

			*vf.dst = args[idx+1]

			return 2, nil
		}

		if after, ok := strings.CutPrefix(arg, vf.long+"="); ok {
			*vf.dst = after

			return 1, nil
		}

		// -C<dir> and -c<file>
		if vf.short != "" && len(arg) > len(vf.short) && strings.HasPrefix(arg, vf.short) {
			*vf.dst = arg[len(vf.short):]

			return 1, nil
		}
	}

	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	return 0, nil
}

// resolvePath makes p absolute relative to the effective working directory.
func resolvePath(cfg *config.Config, p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(cfg.EffectiveCwd, p)
}

func printUsage(o *IO, commands []*Command) {
	o.Println(`bufstream - buffered byte streams over file descriptors

Usage: bufstream [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
  --backend <sys|os>     Descriptor backend (default from config: sys)
  --log-level <level>    Stream debug logging: off, debug, info, warn, error

Commands:`)

	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}
}
