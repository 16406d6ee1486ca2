// Package input holds the prompt line helpers of the day view.
package input

import (
	"errors"
	"strings"
)

// ErrNotCommand is returned when the prompt does not start with a slash.
var ErrNotCommand = errors.New("commands start with /")

// PromptCommand describes a command suggestion entry.
type PromptCommand struct {
	Name        string
	Usage       string
	Description string
}

// PromptMatchingCommands returns commands that match the current input prefix.
func PromptMatchingCommands(input string, commands []PromptCommand) []PromptCommand {
	if !strings.HasPrefix(strings.TrimSpace(input), "/") {
		return nil
	}
	if strings.Contains(input, " ") {
		return nil
	}

	prefix := strings.ToLower(strings.TrimSpace(input))
	matches := make([]PromptCommand, 0, len(commands))
	for _, cmd := range commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// PromptAutocomplete returns the first matching command and whether it exists.
func PromptAutocomplete(input string, commands []PromptCommand) (string, bool) {
	matches := PromptMatchingCommands(input, commands)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Name + " ", true
}

// ParsePrompt splits "/name arg1 arg2" into a lower-cased command name and
// its arguments.
func ParsePrompt(input string) (name string, args []string, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") || len(fields[0]) == 1 {
		return "", nil, ErrNotCommand
	}
	return strings.ToLower(fields[0]), fields[1:], nil
}
