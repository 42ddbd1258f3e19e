package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)
}

func ExampleFormatCommand() {
	fmt.Println(FormatCommand("cmd", []string{"arg with space"}))
	fmt.Println(FormatCommand("cmd", []string{"it's", "don't quote me"}))
	// Output: cmd 'arg with space'
	// cmd it's don't quote me
}

func TestFormatCommand(t *testing.T) {
	cases := [][]string{
		{"echo", "hello"},
		{"echo", "arg with space"},
		{"echo", "it's here"},
		{"/opt/my tool/bin", "-x", "plain"},
		{"grep", "-e", "a\tb"},
	}

	var b strings.Builder
	for _, tc := range cases {
		b.WriteString(strings.ReplaceAll(FormatCommand(tc[0], tc[1:]), "\t", `\t`))
		b.WriteByte('\n')
	}

	newGoldie(t).Assert(t, "format_command", []byte(b.String()))
}

func TestQuoteArg(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"plain":      "plain",
		"two words":  "'two words'",
		"new\nline":  "'new\nline'",
		"it's":       "it's",
		"it's a cat": "it's a cat",
	}

	for in, want := range cases {
		assert.Equal(t, want, quoteArg(in), "quoteArg(%q)", in)
	}
}
