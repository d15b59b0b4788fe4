package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize turns a human entered event name into a path segment.
//
// When preferredLatin is non-empty it is used alone: lower-cased and reduced
// to ASCII letters and digits. Otherwise name is lower-cased and reduced to
// ASCII letters, digits and characters of the Arabic block (U+0600-U+06FF).
// Anything else is dropped, including full-width letters and Arabic
// presentation forms.
//
// A trailing taa marbuta (ة) is kept as is; no caller rewrites it to ه.
func Normalize(name, preferredLatin string) string {
	if strings.TrimSpace(preferredLatin) != "" {
		return filterRunes(preferredLatin, false)
	}
	return filterRunes(name, true)
}

// MatchesEvent reports whether a path segment refers to the event with the
// given display and link names. Only normalized forms are compared.
func MatchesEvent(segment, displayName, linkName string) bool {
	got := Normalize(segment, "")
	if got == "" {
		return false
	}
	if got == Normalize(displayName, linkName) {
		return true
	}
	return got == Normalize(displayName, "")
}

// LosesCompatibilityForms reports whether the names contain compatibility
// characters (full-width digits, ligatures, presentation forms) whose NFKC
// equivalents would have survived Normalize. Normalize still drops them.
func LosesCompatibilityForms(name, preferredLatin string) bool {
	return Normalize(name, preferredLatin) !=
		Normalize(norm.NFKC.String(name), norm.NFKC.String(preferredLatin))
}

// filterRunes only lower-cases ASCII so no other character can turn into a kept one
func filterRunes(s string, keepArabic bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case keepArabic && r >= arabicBlockStart && r <= arabicBlockEnd:
			b.WriteRune(r)
		}
	}
	return b.String()
}
