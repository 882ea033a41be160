// Package repl provides interactive mode for discount-cli.
//
// This package implements the Read-Eval-Print Loop for interactive sessions:
//
//   - repl.go: Main REPL loop and command dispatch
//   - completer.go: Command completion and suggestions
//   - history.go: Command history persistence
//
// The loop keeps one server connection open across commands and dials
// lazily on the first request.
package repl
