package script

import "fmt"

// modifierNames lists the words that scope the rest of a line, in the order
// help shows them.
var modifierNames = []string{"in", "silently", "verbosely", "noerr", "unescaped", "sub"}

var modifierHelp = map[string]string{
	"in":        "in DIR COMMAND...       run COMMAND in DIR",
	"silently":  "silently COMMAND...     don't echo commands or output",
	"verbosely": "verbosely COMMAND...    echo commands and output",
	"noerr":     "noerr COMMAND...        don't fail on a non-zero exit",
	"unescaped": "unescaped COMMAND...    run COMMAND through the shell",
	"sub":       "sub COMMAND...          run COMMAND in a sub-session",
}

// modifierArity is the number of words a modifier takes before the command.
func modifierArity(name string) int {
	if name == "in" {
		return 1
	}
	return 0
}

// modifier returns the scope a modifier word wraps the rest of the line in.
func (in *Interpreter) modifier(name string, rest []string) (func(fn func() error) error, bool) {
	s := in.Session
	switch name {
	case "in":
		return func(fn func() error) error {
			if len(rest) < 1 {
				return fmt.Errorf("%w: in needs a directory", ErrSyntax)
			}
			return s.Chdir(rest[0], fn)
		}, true
	case "silently":
		return s.Silently, true
	case "verbosely":
		return s.Verbosely, true
	case "noerr":
		return func(fn func() error) error {
			return s.ErrExit(false, fn)
		}, true
	case "unescaped":
		return func(fn func() error) error {
			return s.Escaping(false, fn)
		}, true
	case "sub":
		return s.Sub, true
	default:
		return nil, false
	}
}
