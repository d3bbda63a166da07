// Package textutil provides the shared text primitives of the extraction
// pipeline: OCR output cleanup, French/plain number parsing, accent folding
// and whitespace-column splitting.
package textutil

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanOCRText normalizes raw OCR output into the canonical form the rest of
// the pipeline expects: LF line endings, no BOM/zero-width/replacement
// characters, exotic spaces and tabs turned into plain spaces, and no
// leading or trailing whitespace per line. Runs of two or more internal
// spaces are kept as-is: they carry the column structure the line scorer
// and the dual-column heuristic read. The function is idempotent.
func CleanOCRText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\uFEFF', '\u200B', '\u200C', '\u200D', '\uFFFD':
			continue
		case '\u00A0', '\u2007', '\u202F':
			b.WriteRune(' ')
		case '\t':
			// A lone tab already separates columns; two spaces keep it
			// a separator for SplitColumns.
			b.WriteString("  ")
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Trim(line, " ")
	}
	return strings.Join(lines, "\n")
}

// ParseNumber converts a formatted amount string into a float64. It accepts
// French formatting ("1 010,00", "1.010,00"), plain decimals ("1010.00") and
// thousand separators using space, non-breaking space, dot or apostrophe.
// Returns false when no usable number is present.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Strip currency markers and grouping spaces.
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00A0', '\u202F', '\'':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSuffix(s, "DH")
	s = strings.TrimSuffix(s, "MAD")
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The rightmost separator is the decimal mark, the other groups.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		// "1.010" with a 3-digit tail is a thousands group, not a decimal.
		if strings.Count(s, ".") > 1 || (len(s)-lastDot == 4 && len(s) > 4) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var accentStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldAccents removes diacritics, so "Siège" matches "Siege". Matching of
// French labels and city names is done on the folded form.
func FoldAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey folds accents and lowercases, the canonical lookup form.
func NormalizeKey(s string) string {
	return strings.ToLower(FoldAccents(strings.TrimSpace(s)))
}

// SplitColumns splits a line on runs of two or more spaces (CleanOCRText
// turns tabs into such runs). Single spaces are kept inside columns.
func SplitColumns(line string) []string {
	var cols []string
	var cur strings.Builder
	spaceRun := 0
	for _, r := range line {
		if r == ' ' {
			spaceRun++
			continue
		}
		if spaceRun >= 2 && cur.Len() > 0 {
			cols = append(cols, cur.String())
			cur.Reset()
		} else if spaceRun == 1 && cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		spaceRun = 0
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		cols = append(cols, cur.String())
	}
	return cols
}

// DigitRatio returns the fraction of characters that are digits or numeric
// punctuation. Used to spot amounts-only lines.
func DigitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	count := 0
	total := 0
	for _, r := range s {
		if r == ' ' {
			continue
		}
		total++
		if unicode.IsDigit(r) || strings.ContainsRune(".,%-", r) {
			count++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// IsNumericToken reports whether s is entirely digits.
func IsNumericToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SymbolCount counts characters that are neither letters, digits, spaces nor
// common punctuation found in legitimate designations.
func SymbolCount(s string) int {
	count := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '.', ',', '-', '/', '\'', '%', '°', '&', '+', '(', ')':
			continue
		}
		count++
	}
	return count
}
