package tui

import "strings"

// Command represents a parsed prompt command.
type Command struct {
	Name string
	Args string
}

// Command name aliases accepted at the prompt.
var commandAliases = map[string]string{
	"q":  "quit",
	"h":  "help",
	"s":  "search",
	"b":  "backup",
	"re": "restore",
}

// ParseCommand parses a command string (without the leading ':') and
// normalizes aliases.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	name := strings.ToLower(parts[0])
	if full, ok := commandAliases[name]; ok {
		name = full
	}
	cmd := Command{Name: name}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}
