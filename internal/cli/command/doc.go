// Package command provides CLI command definitions for discount-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Application, global flags and shared helpers
//   - generate.go: generate command
//   - use.go: use command
//   - repl.go: interactive mode
//
// Commands parse flags, send one request over the binary protocol and
// format the result. A server answer of false or a non-success result is
// printed, not returned as an error; errors mean the request itself failed.
package command
