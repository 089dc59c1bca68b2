package utils

import (
	"strings"
	"unicode"
)

// Product databases often carry names shouted in full caps ("ALMOND MILK").
// NormalizeCase title-cases such names and leaves everything else alone:
// a string with any lowercase letter is already someone's deliberate
// casing. Idempotent, since the output always contains lowercase letters.
func NormalizeCase(s string) string {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return s
			}
			letters++
		}
	}
	// Too short to tell shouting from an acronym.
	if letters < 3 {
		return s
	}
	return titleCase(s)
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			startOfWord = true
		case startOfWord:
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
