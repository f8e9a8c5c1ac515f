package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxTitleBytes matches the %(title).200B truncation of the output template
const MaxTitleBytes = 200

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeTitle approximates the restricted file name the extraction tool derives from a title:
// accents stripped, anything outside [A-Za-z0-9_.-] collapsed to a single underscore.
func SanitizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	clean := unsafeChars.ReplaceAllString(folded, "_")
	clean = strings.Trim(clean, "_")
	if len(clean) > MaxTitleBytes {
		clean = clean[:MaxTitleBytes]
	}
	if clean == "" {
		return "media"
	}
	return clean
}
