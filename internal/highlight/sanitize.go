package highlight

import "strings"

// Sanitize removes control characters that break XML-based output formats
// like DOCX: null bytes and C0 controls other than tab, newline and
// carriage return, plus DEL. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
