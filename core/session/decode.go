package session

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewLenientReader decodes r as UTF-8, replacing malformed sequences with
// U+FFFD instead of failing.
func NewLenientReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8.NewDecoder())
}

// DecodeLenient converts b to a string the same way NewLenientReader does.
func DecodeLenient(b []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
