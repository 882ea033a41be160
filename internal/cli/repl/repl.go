package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/discountd/internal/cli/connection"
	"github.com/yndnr/discountd/internal/cli/output"
	"github.com/yndnr/discountd/internal/core/domain"
)

// DefaultPrompt is shown before every line.
const DefaultPrompt = "discount> "

var commandHelp = []struct {
	name  string
	usage string
	desc  string
}{
	{"generate", "generate COUNT LENGTH", "Generate COUNT codes of LENGTH characters (7 or 8)"},
	{"use", "use CODE", "Redeem a code"},
	{"connect", "connect [ADDR]", "Connect to a server (default: the --server address)"},
	{"disconnect", "disconnect", "Close the current connection"},
	{"status", "status", "Show the connection state"},
	{"history", "history", "Show command history"},
	{"help", "help", "Show this help"},
	{"exit", "exit", "Leave interactive mode"},
}

// Config configures a REPL.
type Config struct {
	// Server is the address dialed when no connection is open.
	Server string
	// Timeout bounds each request (default: connection.DefaultTimeout).
	Timeout time.Duration
	// Manager holds the current connection.
	Manager *connection.Manager
	// Formatter renders results (default: table).
	Formatter output.Formatter
	// HistoryFile persists history across sessions. Empty disables it.
	HistoryFile string

	Input  io.Reader
	Output io.Writer
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	server    string
	timeout   time.Duration
	manager   *connection.Manager
	formatter output.Formatter

	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	r := &REPL{
		server:    cfg.Server,
		timeout:   cfg.Timeout,
		manager:   cfg.Manager,
		formatter: cfg.Formatter,
		input:     cfg.Input,
		output:    cfg.Output,
		completer: NewCompleter(),
		history:   NewHistory(cfg.HistoryFile, DefaultHistorySize),
	}
	if r.timeout <= 0 {
		r.timeout = connection.DefaultTimeout
	}
	if r.manager == nil {
		r.manager = connection.NewManager()
	}
	if r.formatter == nil {
		r.formatter = &output.TableFormatter{}
	}
	if r.input == nil {
		r.input = os.Stdin
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	return r
}

// Run starts the REPL loop. It returns when the input ends, on exit, or
// when ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "Warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "Warning: cannot save history: %v\n", err)
		}
		_ = r.manager.Disconnect()
	}()

	fmt.Fprintln(r.output, "Interactive mode. Type 'help' for commands.")
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, DefaultPrompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		atEOF := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if atEOF {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
		if atEOF {
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "generate", "gen":
		return r.generate(ctx, args)
	case "use":
		return r.use(ctx, args)
	case "connect":
		return r.connect(ctx, args)
	case "disconnect":
		if err := r.manager.Disconnect(); err != nil {
			return err
		}
		fmt.Fprintln(r.output, "Disconnected")
		return nil
	case "status":
		r.status()
		return nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return nil
	case "help", "?":
		r.help()
		return nil
	default:
		if s := r.completer.Suggest(cmd); len(s) > 0 {
			return fmt.Errorf("unknown command %q (did you mean: %s?)", cmd, strings.Join(s, ", "))
		}
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (r *REPL) generate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: generate COUNT LENGTH")
	}
	count, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid count %q", args[0])
	}
	length, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid length %q", args[1])
	}

	client, err := r.client(ctx)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ok, err := client.Generate(reqCtx, uint16(count), uint8(length))
	if err != nil {
		return err
	}
	return r.formatter.Format(r.output, output.GenerateResult{
		Server: client.Addr(),
		Count:  uint16(count),
		Length: uint8(length),
		OK:     ok,
	})
}

func (r *REPL) use(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: use CODE")
	}
	code := args[0]

	client, err := r.client(ctx)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := client.Use(reqCtx, code)
	if err != nil {
		return err
	}
	return r.formatter.Format(r.output, output.UseResult{
		Server:  client.Addr(),
		Code:    code,
		Result:  result.String(),
		Success: result == domain.UseSuccess,
	})
}

func (r *REPL) connect(ctx context.Context, args []string) error {
	addr := r.server
	if len(args) > 0 {
		addr = args[0]
	}
	if addr == "" {
		return errors.New("usage: connect ADDR")
	}

	dialCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.manager.Connect(dialCtx, addr); err != nil {
		return err
	}
	r.server = addr
	fmt.Fprintf(r.output, "Connected to %s\n", addr)
	return nil
}

// client returns the open connection, dialing r.server if there is none.
// A connection dropped after a failed request is replaced.
func (r *REPL) client(ctx context.Context) (*connection.Client, error) {
	if c, err := r.manager.Current(); err == nil && !c.Closed() {
		return c, nil
	}
	if err := r.connect(ctx, nil); err != nil {
		return nil, err
	}
	return r.manager.Current()
}

func (r *REPL) status() {
	c, err := r.manager.Current()
	if err != nil || c.Closed() {
		fmt.Fprintf(r.output, "Not connected (server: %s)\n", r.server)
		return
	}
	fmt.Fprintf(r.output, "Connected to %s\n", c.Addr())
}

func (r *REPL) help() {
	fmt.Fprintln(r.output, "Commands:")
	for _, h := range commandHelp {
		fmt.Fprintf(r.output, "  %-22s %s\n", h.usage, h.desc)
	}
}
