// Package normalize holds the locale-aware canonicalization helpers shared by
// every downstream stage: accent stripping for fuzzy matching, identifier
// canonicalization, Spanish money/percent parsing and date parsing. All
// functions are pure and never return errors; unparseable input degrades to a
// "no value" result.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reKeepChars  = regexp.MustCompile(`[^A-Za-z0-9 &.,\-/]`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// StripAccents removes combining marks (NFD decomposition) so that
// "Teléfonica" and "Telefonica" compare equal.
func StripAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CleanCompany uppercases and prunes punctuation/accents for fuzzy company
// name matching. Whitespace runs collapse to a single space.
func CleanCompany(s string) string {
	s = StripAccents(s)
	s = reKeepChars.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// CanonicalID strips all non-alphanumeric characters and uppercases, turning
// "es b-50.040.005" into "ESB50040005".
func CanonicalID(s string) string {
	return strings.ToUpper(reNonAlnum.ReplaceAllString(s, ""))
}
