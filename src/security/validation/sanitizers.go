package validation

import (
	"strings"
	"unicode"
)

// StripUnprintable removes non-printable characters from extracted page
// text, keeping common whitespace like space, tab, newline, and carriage
// return. DOM-sourced note text occasionally carries stray control bytes.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
