package locale

import (
	"regexp"

	"github.com/facto-ocr/facto/internal/textutil"
)

// Moroccan business identifier patterns. Matched on normalized text; the
// capture group holds the identifier value.
var identifierPatterns = []struct {
	Key     string
	Pattern *regexp.Regexp
}{
	{"ice", regexp.MustCompile(`\bice\s*(?:n°?)?\s*:?\s*(\d{15})\b`)},
	{"if", regexp.MustCompile(`\bi\.?f\.?\s*(?:n°?)?\s*:?\s*(\d{6,8})\b`)},
	{"rc", regexp.MustCompile(`\br\.?c\.?\s*(?:n°?)?\s*:?\s*(\d{3,8})\b`)},
	{"cnss", regexp.MustCompile(`\bcnss\s*(?:n°?)?\s*:?\s*(\d{6,9})\b`)},
	{"patente", regexp.MustCompile(`\bpatente\s*(?:n°?)?\s*:?\s*(\d{6,9})\b`)},
	{"tva", regexp.MustCompile(`\b(?:tva|t\.v\.a)\s*(?:n°?)?\s*:?\s*(\d{6,9})\b`)},
}

// identifierLabelPattern spots any identifier label even when the value is
// missing or unreadable.
var identifierLabelPattern = regexp.MustCompile(
	`\b(?:ice|cnss|patente|i\.?f\.?|r\.?c\.?|t\.v\.a|tva)\b\s*(?:n°?)?\s*:`)

// ExtractIdentifiers pulls every Moroccan business identifier from the text.
// Keys are "ice", "if", "rc", "cnss", "patente", "tva".
func ExtractIdentifiers(text string) map[string]string {
	key := textutil.NormalizeKey(text)
	out := make(map[string]string)
	for _, ip := range identifierPatterns {
		if m := ip.Pattern.FindStringSubmatch(key); m != nil {
			if _, seen := out[ip.Key]; !seen {
				out[ip.Key] = m[1]
			}
		}
	}
	return out
}

// IsIdentifierLine reports whether the line carries a business identifier
// label, with or without a readable value.
func IsIdentifierLine(line string) bool {
	key := textutil.NormalizeKey(line)
	if identifierLabelPattern.MatchString(key) {
		return true
	}
	for _, ip := range identifierPatterns {
		if ip.Pattern.MatchString(key) {
			return true
		}
	}
	return false
}
