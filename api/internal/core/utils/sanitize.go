package utils

import (
	"strings"
	"unicode"
)

// SanitizeText keeps ASCII letters and whitespace, the same character set
// the legacy web form accepted for cipher input.
func SanitizeText(text string) string {
	return strings.Map(func(r rune) rune {
		if isASCIILetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

// SanitizeKeyword lower-cases a Vigenère keyword and drops anything that is
// not a-z.
func SanitizeKeyword(keyword string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, keyword)
}

// SanitizeDigits drops every character that is not 0-9.
func SanitizeDigits(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, key)
}

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
