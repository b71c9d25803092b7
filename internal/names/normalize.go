// Package names normalizes facility names for matching and grouping.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// genericWords carry no identity in a facility name. They are dropped from
// match tokens but kept in grouping keys.
var genericWords = map[string]bool{
	"the": true, "and": true, "of": true, "hospital": true, "hospitals": true,
	"medical": true, "center": true, "centre": true, "clinic": true,
	"health": true, "healthcare": true,
}

// Fold standardizes a name by:
//  1. Decomposing to NFKD and removing combining marks
//  2. Case folding
//  3. Turning "&" into "and"
//  4. Replacing every other non letter or digit with a space
//  5. Collapsing whitespace
func Fold(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = strings.ReplaceAll(strings.ToLower(s), "&", " and ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Key is the grouping key of a name: Fold without any whitespace, so
// "City General Hospital" and "city-general hospital" share a key.
func Key(name string) string {
	return strings.ReplaceAll(Fold(name), " ", "")
}

// Tokens returns the distinctive words of a name. Names made only of
// generic words keep all of them.
func Tokens(name string) []string {
	all := strings.Fields(Fold(name))
	var out []string
	for _, w := range all {
		if !genericWords[w] {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}
