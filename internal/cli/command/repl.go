package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/discountd/internal/cli/output"
	"github.com/yndnr/discountd/internal/cli/repl"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	r := repl.New(repl.Config{
		Server:      flags.Server,
		Timeout:     flags.Timeout,
		Manager:     GetConnectionManager(c),
		Formatter:   output.NewFormatter(flags.Output),
		HistoryFile: c.String("history-file"),
		Input:       c.App.Reader,
		Output:      c.App.Writer,
	})
	return r.Run(c.Context)
}
