package highlight

import "strings"

// Characters outside the two Unicode blocks below that still flag text as
// complex: common math operators plus a few letter-like symbols.
const complexSymbols = "≤≥≠≈∞∫∑∏µΔΩ∂∇θλπρτφχψζηξςαβγδϵ"

// IsComplex reports whether text contains characters that are unlikely to
// survive as plain text in the DOCX output: anything in the Unicode
// Mathematical Operators block, the Greek and Coptic letter range, or the
// fixed symbol set above. Empty text is never complex.
//
// The character set is a hard-coded heuristic; false positives (a stray
// Greek letter in prose) and false negatives (unusual scripts outside the
// listed ranges) are accepted.
func IsComplex(text string) bool {
	for _, r := range text {
		switch {
		case r >= '∀' && r <= '⋿': // Mathematical Operators
			return true
		case r >= 'Α' && r <= 'ω': // Greek and Coptic letters
			return true
		case strings.ContainsRune(complexSymbols, r):
			return true
		}
	}
	return false
}
