package optionmatcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// isPunct matches everything that is not a word character or whitespace.
func isPunct(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r))
}

// Normalize lowercases s, removes punctuation and collapses whitespace runs
// to single spaces.
func Normalize(s string) string {
	t := transform.Chain(norm.NFC, runes.Remove(runes.Predicate(isPunct)), cases.Lower(language.Und))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Keywords returns the distinct normalized words of s with at least minLen runes.
func Keywords(s string, minLen int) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(s)) {
		if utf8.RuneCountInString(w) >= minLen {
			out[w] = struct{}{}
		}
	}
	return out
}

// words returns the distinct words of an already normalized string.
func words(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		out[w] = struct{}{}
	}
	return out
}
