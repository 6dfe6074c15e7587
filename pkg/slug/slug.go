// Package slug derives canonical URL-safe identifiers from arbitrary text.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	separatorRuns = regexp.MustCompile(`[\s_]+`)
	invalidChars  = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns    = regexp.MustCompile(`-{2,}`)
)

// Normalize converts text into its canonical slug form: lowercase ASCII
// alphanumerics separated by single hyphens, with no leading or trailing
// hyphens. Accented characters are reduced to their base letters; runes with
// no ASCII representation (emoji, symbols) are dropped. Returns the empty
// string when nothing sluggable remains, which callers must treat as invalid.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	// NFKD splits accented characters into base letter + combining marks.
	// The marks are non-ASCII, so the ASCII filter below strips accents
	// while keeping the base letters.
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = separatorRuns.ReplaceAllString(s, "-")
	s = invalidChars.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
