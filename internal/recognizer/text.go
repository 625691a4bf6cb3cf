package recognizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeText applies Unicode NFC normalization and strips control
// characters a CTC decode should never legitimately produce, so that
// downstream consumers compare decoded strings by rune content rather than
// by incidental composed/decomposed form.
func normalizeText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
