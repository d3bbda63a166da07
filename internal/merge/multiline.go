package merge

import (
	"strings"
	"unicode"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// maxLookahead bounds how many lines past the anchor a logical record may
// span (4 physical lines total).
const maxLookahead = 3

// amountsOnlyRatio is the numeric-character share above which a line is
// treated as the amounts row of a wrapped record.
const amountsOnlyRatio = 0.6

// MultiLine detects logical records spread across up to four physical lines
// and merges them. Returns the merged line list plus the groups formed, for
// traceability. Lines consumed by a merge are never revisited.
func MultiLine(lines []string) ([]string, []models.MultiLineGroup) {
	merged := make([]string, 0, len(lines))
	var groups []models.MultiLineGroup

	for i := 0; i < len(lines); i++ {
		if g, ok := matchIdentifierGroup(lines, i); ok {
			merged = append(merged, g.Text)
			groups = append(groups, g)
			i += len(g.Indices) - 1
			continue
		}
		if g, ok := matchDescriptionGroup(lines, i); ok {
			merged = append(merged, g.Text)
			groups = append(groups, g)
			i += len(g.Indices) - 1
			continue
		}
		merged = append(merged, lines[i])
	}
	return merged, groups
}

// matchIdentifierGroup recognizes the "reference first" wrap: a barcode or
// reference line without amount data, then up to three lines until one
// carrying amounts closes the record. No amounts found means no merge.
func matchIdentifierGroup(lines []string, i int) (models.MultiLineGroup, bool) {
	anchor := strings.TrimSpace(lines[i])
	startsRef := textutil.BarcodePattern.MatchString(anchor) ||
		textutil.DashedRefPattern.MatchString(anchor) ||
		textutil.NumericSuffixRefPattern.MatchString(anchor)
	if !startsRef || textutil.HasAmount(anchor) {
		return models.MultiLineGroup{}, false
	}

	indices := []int{i}
	parts := []string{anchor}
	for j := i + 1; j <= i+maxLookahead && j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			break
		}
		// A new record start aborts the group.
		if textutil.BarcodePattern.MatchString(next) && textutil.HasAmount(next) {
			break
		}
		indices = append(indices, j)
		parts = append(parts, next)
		if textutil.HasAmount(next) {
			text := strings.Join(parts, " ")
			return models.MultiLineGroup{
				Indices:    indices,
				Text:       text,
				Confidence: groupConfidence(len(indices), text),
			}, true
		}
	}
	return models.MultiLineGroup{}, false
}

// matchDescriptionGroup recognizes the "description first" wrap: a free-text
// line, optional pure-text continuations, closed by an amounts-only line.
func matchDescriptionGroup(lines []string, i int) (models.MultiLineGroup, bool) {
	anchor := strings.TrimSpace(lines[i])
	if !isFreeText(anchor) {
		return models.MultiLineGroup{}, false
	}

	indices := []int{i}
	parts := []string{anchor}
	for j := i + 1; j <= i+maxLookahead && j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if isAmountsOnly(next) {
			indices = append(indices, j)
			parts = append(parts, next)
			text := strings.Join(parts, " ")
			return models.MultiLineGroup{
				Indices:    indices,
				Text:       text,
				Confidence: groupConfidence(len(indices), text),
			}, true
		}
		if !isFreeText(next) {
			break
		}
		indices = append(indices, j)
		parts = append(parts, next)
	}
	return models.MultiLineGroup{}, false
}

// isFreeText reports whether the line is descriptive text: letters present,
// no amounts, and not a record anchor.
func isFreeText(line string) bool {
	if line == "" || textutil.HasAmount(line) {
		return false
	}
	if textutil.BarcodePattern.MatchString(line) ||
		textutil.DashedRefPattern.MatchString(line) {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

// isAmountsOnly reports whether the line is the numeric tail of a wrapped
// record: two amounts minimum and dominated by numeric characters.
func isAmountsOnly(line string) bool {
	if textutil.CountAmounts(line) < expectedAmounts {
		return false
	}
	return textutil.DigitRatio(line) > amountsOnlyRatio
}

// groupConfidence scores a merge decision: more contributing lines and a
// percentage token both raise trust in the grouping.
func groupConfidence(lineCount int, text string) float64 {
	conf := 0.5 + 0.1*float64(lineCount)
	if textutil.PercentPattern.MatchString(text) {
		conf += 0.1
	}
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}
