// Package merge repairs OCR line splitting: fragment rejoining (one record
// broken mid-token across two lines) and multi-line grouping (one product
// spread over up to four physical lines).
package merge

import (
	"strings"
	"unicode"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// expectedAmounts is how many currency amounts a complete product line
// carries at minimum (unit price and total).
const expectedAmounts = 2

// Fragments rejoins lines the OCR split mid-record. A truncated line
// followed by its continuation fragment is concatenated with a single
// space; everything else passes through unchanged. Single left-to-right
// pass, O(n).
func Fragments(lines []string) models.MergeResult {
	res := models.MergeResult{Lines: make([]string, 0, len(lines))}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if i+1 < len(lines) && isTruncated(line) && isFragment(lines[i+1]) {
			res.Lines = append(res.Lines, line+" "+strings.TrimSpace(lines[i+1]))
			res.MergeCount++
			i++
			continue
		}
		res.Lines = append(res.Lines, line)
	}
	return res
}

// isTruncated reports whether the line starts a product record but was cut
// short: it opens with a barcode or dashed reference yet is missing amounts,
// and its tail looks like a mid-token break.
func isTruncated(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	startsRef := textutil.BarcodePattern.MatchString(trimmed) ||
		textutil.DashedRefPattern.MatchString(trimmed)
	if !startsRef {
		return false
	}
	if textutil.CountAmounts(trimmed) >= expectedAmounts {
		return false
	}
	return endsMidToken(trimmed)
}

// endsMidToken reports whether the line tail is a partial word or trailing
// break punctuation.
func endsMidToken(line string) bool {
	last := line[len(line)-1]
	switch last {
	case '-', '/', ',', '.', ';', ':':
		return true
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	tail := fields[len(fields)-1]
	// A short alphabetic tail is likely the first half of a split word.
	if len(tail) <= 3 && isAlpha(tail) {
		return true
	}
	return false
}

// isFragment reports whether the line is the continuation half of a split
// record: it must not start a new record, and must either open with a
// continuation marker and carry an amount, or start lowercase and carry two.
func isFragment(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if textutil.BarcodePattern.MatchString(trimmed) ||
		textutil.DashedRefPattern.MatchString(trimmed) {
		return false
	}
	amounts := textutil.CountAmounts(trimmed)
	switch trimmed[0] {
	case '-', '.', '/':
		return amounts >= 1
	}
	first := []rune(trimmed)[0]
	if unicode.IsLower(first) {
		return amounts >= 2
	}
	return false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
