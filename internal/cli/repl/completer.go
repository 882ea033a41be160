package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	commands := make([]string, 0, len(commandHelp))
	for _, h := range commandHelp {
		commands = append(commands, h.name)
	}
	commands = append(commands, "quit")
	sort.Strings(commands)
	return &Completer{commands: commands}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Suggest returns commands close to an unknown word: those sharing its
// first letter.
func (c *Completer) Suggest(word string) []string {
	if word == "" {
		return nil
	}
	return c.Complete(word[:1])
}
