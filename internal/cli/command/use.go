package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/discountd/internal/cli/output"
	"github.com/yndnr/discountd/internal/core/domain"
)

// UseCommand returns the use command.
func UseCommand() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Aliases:   []string{"redeem"},
		Usage:     "Redeem a discount code",
		ArgsUsage: "CODE",
		Action:    useAction,
	}
}

func useAction(c *cli.Context) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("code required")
	}

	client, err := EnsureConnected(c)
	if err != nil {
		return err
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	result, err := client.Use(ctx, code)
	if err != nil {
		return err
	}

	return printResult(c, output.UseResult{
		Server:  client.Addr(),
		Code:    code,
		Result:  result.String(),
		Success: result == domain.UseSuccess,
	})
}
