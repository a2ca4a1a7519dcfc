package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bufstream/internal/config"
	"github.com/calvinalkan/bufstream/pkg/stream"
)

const replPrompt = "bufstream> "

var replCommands = []string{
	"getc", "putc", "read", "write", "seek", "tell",
	"flush", "eof", "error", "fileno", "help", "quit",
}

// ReplCmd returns the repl command.
func ReplCmd(cfg *config.Config, opts []stream.Option) *Command {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	mode := fs.StringP("mode", "m", "r+", "Open mode: r, r+, w, w+, a or a+")

	return &Command{
		Flags: fs,
		Usage: "repl [flags] <file>",
		Short: "Drive a stream interactively",
		Long: `Open <file> as a buffered stream and run stream operations one line
at a time. Type 'help' for the list of operations.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execRepl(ctx, io, cfg, opts, *mode, args)
		},
	}
}

// lineSource yields input lines. Prompt returns io.EOF when input ends.
type lineSource interface {
	Prompt(prompt string) (string, error)
}

// scanSource reads lines from a non-terminal input without echoing a prompt.
type scanSource struct {
	sc *bufio.Scanner
}

func (s scanSource) Prompt(string) (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}

	if err := s.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func execRepl(ctx context.Context, o *IO, cfg *config.Config, opts []stream.Option, mode string, args []string) error {
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

	var src lineSource

	if o.In() == os.Stdin && liner.TerminalSupported() {
		line := liner.NewLiner()
		defer line.Close()

		line.SetCtrlCAborts(true)
		line.SetCompleter(completeCommand)
		loadHistory(line, cfg.HistoryFileAbs)

		defer saveHistory(o, line, cfg.HistoryFileAbs)

		src = historySource{State: line}
	} else {
		src = scanSource{sc: bufio.NewScanner(o.In())}
	}

	loopErr := replLoop(ctx, o, s, src)

	return errors.Join(loopErr, s.Close())
}

func replLoop(ctx context.Context, o *IO, s *stream.Stream, src lineSource) error {
	for {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		line, err := src.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if execLine(o, s, line) {
			return nil
		}
	}
}

// execLine runs one REPL line against s. Returns true when the session
// should end.
func execLine(o *IO, s *stream.Stream, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true

	case "help", "?":
		printReplHelp(o)

	case "getc":
		printChar(o, s.GetChar())

	case "putc":
		replPutc(o, s, args)

	case "read":
		replRead(o, s, args)

	case "write":
		data := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if data == "" {
			o.Println("usage: write <text>")

			break
		}

		o.Printf("%d\n", s.WriteBlock([]byte(data), len(data), 1))

	case "seek":
		replSeek(o, s, args)

	case "tell":
		o.Printf("%d\n", s.Tell())

	case "flush":
		o.Printf("%d\n", s.Flush())

	case "eof":
		o.Printf("eof=%d errors=%d\n", s.EOF(), s.Errors())

	case "error":
		if err := s.Err(); err != nil {
			o.Printf("%v\n", err)
		} else {
			o.Println("none")
		}

	case "fileno":
		o.Printf("%d\n", s.Fileno())

	default:
		o.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
	}

	return false
}

func printChar(o *IO, c int) {
	if c == stream.EOF {
		o.Println("EOF")

		return
	}

	o.Printf("%d %q\n", c, rune(c))
}

func replPutc(o *IO, s *stream.Stream, args []string) {
	if len(args) != 1 {
		o.Println("usage: putc <char|0-255>")

		return
	}

	c, ok := parseChar(args[0])
	if !ok {
		o.Printf("invalid byte: %s\n", args[0])

		return
	}

	printChar(o, s.PutChar(c))
}

// parseChar accepts a single character or a decimal byte value.
func parseChar(arg string) (int, bool) {
	if len(arg) == 1 {
		return int(arg[0]), true
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 || n > 255 {
		return 0, false
	}

	return n, true
}

func replRead(o *IO, s *stream.Stream, args []string) {
	if len(args) < 1 || len(args) > 2 {
		o.Println("usage: read <size> [count]")

		return
	}

	size, err := strconv.Atoi(args[0])
	if err != nil || size < 0 {
		o.Printf("invalid size: %s\n", args[0])

		return
	}

	count := 1
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 0 {
			o.Printf("invalid count: %s\n", args[1])

			return
		}
	}

	if size > 0 && count > stream.BufferSize*16/size {
		o.Printf("block too large: %d x %d\n", size, count)

		return
	}

	before := s.Tell()
	dst := make([]byte, size*count)
	n := s.ReadBlock(dst, size, count)

	got := dst
	if n == 0 && before >= 0 {
		got = dst[:max(0, min(int(s.Tell()-before), len(dst)))]
	}

	o.Printf("%d %q\n", n, got)
}

func replSeek(o *IO, s *stream.Stream, args []string) {
	if len(args) < 1 || len(args) > 2 {
		o.Println("usage: seek <offset> [set|cur|end]")

		return
	}

	off, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		o.Printf("invalid offset: %s\n", args[0])

		return
	}

	whence := io.SeekStart

	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "set":
			whence = io.SeekStart
		case "cur":
			whence = io.SeekCurrent
		case "end":
			whence = io.SeekEnd
		default:
			o.Printf("invalid whence: %s\n", args[1])

			return
		}
	}

	o.Printf("%d\n", s.Seek(off, whence))
}

func printReplHelp(o *IO) {
	o.Println(`Operations:
  getc                      Read one byte
  putc <char|0-255>         Write one byte
  read <size> [count]       Read count blocks of size bytes
  write <text>              Write text as one block
  seek <off> [set|cur|end]  Reposition (default: set)
  tell                      Print logical position
  flush                     Write staged bytes
  eof                       Print EOF and fault counters
  error                     Print the last failure
  fileno                    Print the descriptor
  quit                      Close the stream and exit`)
}

func completeCommand(line string) []string {
	var out []string

	for _, c := range replCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	return out
}

// historySource records every non-blank line it returns.
type historySource struct {
	*liner.State
}

func (h historySource) Prompt(prompt string) (string, error) {
	line, err := h.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		h.AppendHistory(line)
	}

	return line, err
}

func loadHistory(line *liner.State, path string) {
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		return
	}

	defer func() { _ = f.Close() }()

	_, _ = line.ReadHistory(f)
}

func saveHistory(o *IO, line *liner.State, path string) {
	if path == "" {
		return
	}

	var buf bytes.Buffer

	_, err := line.WriteHistory(&buf)
	if err == nil {
		err = atomic.WriteFile(path, &buf)
	}

	if err != nil {
		o.ErrPrintln("warning: saving history:", err)
	}
}
