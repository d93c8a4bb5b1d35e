package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var customEmoji = regexp.MustCompile(`<a?:[A-Za-z0-9_~]{1,32}:[0-9]{15,21}>`)

// Ellipsis truncates s to at most max runes, replacing the tail with "…".
func Ellipsis(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// StripCustomEmoji removes Discord custom emoji markup such as <:gold:123456789012345678>.
func StripCustomEmoji(s string) string {
	return customEmoji.ReplaceAllString(s, "")
}

// NormalizeWhitespace collapses every run of whitespace into a single space and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Clean prepares user supplied names for storage and uniqueness checks.
func Clean(s string) string {
	return NormalizeWhitespace(norm.NFC.String(StripCustomEmoji(s)))
}

// HasVisibleText reports whether s contains at least one letter or digit.
// Names made only of emoji, symbols or punctuation are rejected by callers.
func HasVisibleText(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}
