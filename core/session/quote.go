package session

import (
	"strings"
	"unicode"
)

// FormatCommand renders a command line for echoing and tracing. Arguments
// containing whitespace are wrapped in single quotes unless they already
// contain one, in which case they're left alone.
func FormatCommand(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(path))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if strings.IndexFunc(arg, unicode.IsSpace) < 0 || strings.Contains(arg, "'") {
		return arg
	}
	return "'" + arg + "'"
}
