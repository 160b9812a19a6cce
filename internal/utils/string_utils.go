package utils

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripPolicy = bluemonday.StripTagsPolicy()

// SanitizeText strips markup from user-supplied text and trims surrounding space.
func SanitizeText(s string) string {
	s = stripPolicy.Sanitize(s)
	// bluemonday escapes entities; stored text is plain.
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// SanitizePtr applies SanitizeText through a pointer, leaving nil alone.
func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeText(*s)
	return &clean
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldForSearch lowercases s and removes diacritics.
func FoldForSearch(s string) string {
	folded, _, err := transform.String(accentStripper, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
