package authorship

import (
	"strings"
	"unicode"
)

// Markers are the footnote symbols used to flag co-first or corresponding authors.
const Markers = "*†‡§"

// Name is a name in its two comparable forms.
type Name struct {
	Raw        string
	WithSpaces string
	Compact    string
}

// Normalize lowercases raw, turns hyphens and periods into spaces and strips
// authorship markers. Compact is WithSpaces with all whitespace removed.
func Normalize(raw string) Name {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch {
		case r == '-' || r == '.':
			b.WriteRune(' ')
		case strings.ContainsRune(Markers, r):
		default:
			b.WriteRune(r)
		}
	}
	withSpaces := b.String()

	return Name{
		Raw:        raw,
		WithSpaces: withSpaces,
		Compact:    compact(withSpaces),
	}
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// MarkerIn returns the first authorship marker contained in text, or "".
func MarkerIn(text string) string {
	for _, m := range Markers {
		if strings.ContainsRune(text, m) {
			return string(m)
		}
	}
	return ""
}
