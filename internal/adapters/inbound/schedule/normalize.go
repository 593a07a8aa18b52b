package schedule

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeID strips diacritics, trims, and collapses whitespace in a team
// or player identifier. Case is preserved: ids are display names too.
func NormalizeID(s string) string {
	if s == "" {
		return ""
	}
	return collapseWhitespace(strings.TrimSpace(stripDiacritics(s)))
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
