// Package main provides the entry point for discount-cli.
//
// The CLI talks to discount-server over its binary TCP protocol:
//
//   - generate: create a batch of codes
//   - use: redeem a code
//   - repl: interactive mode (the default without a subcommand)
//
// Usage:
//
//	discount-cli [global flags] command [flags]
//	discount-cli generate --count 100 --length 8
//	discount-cli --output json use ABCD1234
package main
