package command

import (
	"context"
	"fmt"
	"math"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/discountd/internal/cli/output"
)

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate new discount codes",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:     "count",
				Aliases:  []string{"n"},
				Usage:    "Number of codes (max 2000)",
				Required: true,
			},
			&cli.UintFlag{
				Name:    "length",
				Aliases: []string{"l"},
				Usage:   "Code length (7 or 8)",
				Value:   8,
			},
		},
		Action: generateAction,
	}
}

func generateAction(c *cli.Context) error {
	count, length := c.Uint("count"), c.Uint("length")
	if count > math.MaxUint16 {
		return fmt.Errorf("count %d does not fit the protocol (max %d)", count, math.MaxUint16)
	}
	if length > math.MaxUint8 {
		return fmt.Errorf("length %d does not fit the protocol (max %d)", length, math.MaxUint8)
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

	ok, err := client.Generate(ctx, uint16(count), uint8(length))
	if err != nil {
		return err
	}

	return printResult(c, output.GenerateResult{
		Server: client.Addr(),
		Count:  uint16(count),
		Length: uint8(length),
		OK:     ok,
	})
}
