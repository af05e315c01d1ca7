package shell

import (
	"strings"

	"golang.org/x/text/cases"
)

// Command is the classification of one input line.
type Command int

const (
	CommandEmpty Command = iota
	CommandExit
	CommandHelp
	CommandQuit
	CommandLookup
	CommandUnknown
)

const lookupKeyword = "lookup"

var commandWords = []string{"exit", "help", lookupKeyword, "quit"}

func (c Command) String() string {
	switch c {
	case CommandEmpty:
		return "empty"
	case CommandExit:
		return "exit"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	case CommandLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// Classify maps an input line to a command. Matching ignores case and
// surrounding whitespace; lookup matches as a prefix.
func Classify(line string) Command {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return CommandEmpty
	}
	switch fold(trimmed) {
	case "exit":
		return CommandExit
	case "help":
		return CommandHelp
	case "quit":
		return CommandQuit
	}
	if hasLookupPrefix(trimmed) {
		return CommandLookup
	}
	return CommandUnknown
}

// lookupArgument returns the first word after the lookup keyword, or "".
func lookupArgument(line string) string {
	trimmed := strings.TrimSpace(line)
	if !hasLookupPrefix(trimmed) {
		return ""
	}
	fields := strings.Fields(trimmed[len(lookupKeyword):])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func hasLookupPrefix(s string) bool {
	return len(s) >= len(lookupKeyword) && fold(s[:len(lookupKeyword)]) == lookupKeyword
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// CompleteCommand completes a partially typed command word. It reports false
// unless exactly one word matches. Lookup completes with a trailing space for
// its argument.
func CompleteCommand(partial string) (string, bool) {
	prefix := fold(strings.TrimLeft(partial, " \t"))
	if prefix == "" || strings.ContainsAny(prefix, " \t") {
		return "", false
	}
	var match string
	for _, word := range commandWords {
		if !strings.HasPrefix(word, prefix) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = word
	}
	switch match {
	case "":
		return "", false
	case lookupKeyword:
		return match + " ", true
	}
	return match, true
}
