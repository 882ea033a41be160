package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/discountd/internal/cli/connection"
	"github.com/yndnr/discountd/internal/cli/output"
	"github.com/yndnr/discountd/internal/cli/repl"
	"github.com/yndnr/discountd/internal/infra/buildinfo"
	"github.com/yndnr/discountd/internal/telemetry/logger"
)

// DefaultServer is the server address used when --server is not given.
const DefaultServer = "127.0.0.1:5000"

const connMgrKey = "connMgr"

// App creates the CLI application. Without a subcommand it starts
// interactive mode.
func App() *cli.App {
	app := &cli.App{
		Name:    "discount-cli",
		Usage:   "Discount code service client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GenerateCommand(),
			UseCommand(),
			ReplCommand(),
		},
		Before: before,
		After: func(c *cli.Context) error {
			if mgr := GetConnectionManager(c); mgr != nil {
				return mgr.Disconnect()
			}
			return nil
		},
		Action: replAction,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (host:port)",
			EnvVars: []string{"DISCOUNT_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:  "history-file",
			Usage: "Interactive mode history file (empty to disable)",
			Value: repl.DefaultHistoryFile(),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Timeout time.Duration
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  format,
		Timeout: c.Duration("timeout"),
		Verbose: c.Bool("verbose"),
	}, nil
}

func before(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	level := "warn"
	if flags.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{
		Level:     level,
		Format:    "text",
		Output:    c.App.ErrWriter,
		ShowCodes: true,
	})
	if err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[connMgrKey] = connection.NewManager(
		connection.WithTimeout(flags.Timeout),
		connection.WithLogger(log.Slog().With("component", "client")),
	)
	return nil
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata[connMgrKey].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

// EnsureConnected dials the --server address and returns the client.
func EnsureConnected(c *cli.Context) (*connection.Client, error) {
	mgr := GetConnectionManager(c)
	if mgr == nil {
		return nil, fmt.Errorf("connection manager not initialized")
	}
	if client, err := mgr.Current(); err == nil && !client.Closed() {
		return client, nil
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	if err := mgr.Connect(ctx, flags.Server); err != nil {
		return nil, err
	}
	return mgr.Current()
}

// printResult renders data in the --output format.
func printResult(c *cli.Context, data any) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(flags.Output).Format(c.App.Writer, data)
}
