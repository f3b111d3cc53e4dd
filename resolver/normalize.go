package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of an identifier: NFKC folded, upper
// case, with whitespace, '-' and '_' removed. Normalize is a projection:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// Removing a separator can leave a mark next to a new base, and
	// composing may produce a rune that upper-cases again, so the pass is
	// repeated until it settles.
	upper := cases.Upper(language.Und)
	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizePass(upper, s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

const maxNormalizePasses = 8

func normalizePass(upper cases.Caser, s string) string {
	s = upper.String(norm.NFKC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, s)
	return norm.NFKC.String(upper.String(norm.NFKC.String(s)))
}

// GroupMatches reports whether a group label passes filter. An empty filter
// passes everything; otherwise the label must contain the filter, ignoring
// case.
func GroupMatches(filter, label string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(label), fold.String(filter))
}
