// Package entity separates an invoice header into vendor and customer
// blocks. Three strategies run in order: explicit labels, the dual-column
// positional heuristic, and footer identifiers (tax IDs always belong to
// the vendor). The dual-column split works on whitespace gaps alone, so its
// precision on genuinely two-column layouts is approximate.
package entity

import (
	"regexp"
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// Block confidences by provenance.
const (
	confLabeled  = 0.9
	confColumn   = 0.6
	confInferred = 0.4
)

// blockWindow caps how many lines a labeled block collects.
const blockWindow = 5

// Detector attributes header text to vendor or customer.
type Detector struct {
	loc *locale.Locale
}

// NewDetector builds an entity detector for the given locale.
func NewDetector(loc *locale.Locale) *Detector {
	if loc == nil {
		loc = locale.Default()
	}
	return &Detector{loc: loc}
}

// Detect separates the header zone into vendor/customer blocks and collects
// the vendor identifiers from the footer zone. Either block may be nil when
// no strategy produced it.
func (d *Detector) Detect(header, footer string) models.EntityZones {
	lines := strings.Split(header, "\n")

	zones := models.EntityZones{}
	zones.Vendor = d.labeledBlock(lines, d.loc.VendorLabelPattern)
	zones.Customer = d.labeledBlock(lines, d.loc.CustomerLabelPattern)

	if zones.Vendor == nil || zones.Customer == nil {
		left, right := d.splitColumns(lines)
		if zones.Vendor == nil && left != nil {
			zones.Vendor = left
		}
		if zones.Customer == nil && right != nil {
			zones.Customer = right
		}
	}

	if zones.Vendor == nil {
		zones.Vendor = d.inferredVendor(lines)
	}

	// Tax identifiers belong to the vendor no matter where they appear.
	zones.Identifiers = locale.ExtractIdentifiers(header + "\n" + footer)
	if len(zones.Identifiers) == 0 {
		zones.Identifiers = nil
	}

	zones.CustomerCode = d.customerCode(header + "\n" + footer)
	return zones
}

// labeledBlock finds an explicit label and collects its inline remainder
// plus following lines until a stop condition: another label, an identifier
// or date line, or a blank line.
func (d *Detector) labeledBlock(lines []string, label *regexp.Regexp) *models.EntityBlock {
	for i, line := range lines {
		m := label.FindStringSubmatch(textutil.NormalizeKey(line))
		if m == nil {
			continue
		}
		var parts []string
		if tail := originalTail(line, m[1]); tail != "" {
			parts = append(parts, tail)
		}
		for j := i + 1; j < len(lines) && j <= i+blockWindow; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || d.isBlockStop(next) {
				break
			}
			parts = append(parts, next)
		}
		if len(parts) == 0 {
			// Bare label with nothing after it. A later occurrence of the
			// same label may still carry content.
			continue
		}
		return &models.EntityBlock{
			Text:       strings.Join(parts, "\n"),
			Source:     models.SourceExplicitLabel,
			Confidence: confLabeled,
		}
	}
	return nil
}

// isBlockStop ends a labeled block: another entity label, an identifier
// line, or a date line.
func (d *Detector) isBlockStop(line string) bool {
	key := textutil.NormalizeKey(line)
	if d.loc.VendorLabelPattern.MatchString(key) || d.loc.CustomerLabelPattern.MatchString(key) {
		return true
	}
	return locale.IsIdentifierLine(line) || d.loc.IsDateLine(line)
}

// splitColumns applies the dual-column heuristic: lines with a wide internal
// gap are split left/right. The left side is the vendor when it carries
// identifier or legal-form markers, or spans at least two lines.
func (d *Detector) splitColumns(lines []string) (*models.EntityBlock, *models.EntityBlock) {
	var left, right []string
	for _, line := range lines {
		if !textutil.WideGapPattern.MatchString(line) {
			continue
		}
		cols := textutil.SplitColumns(line)
		if len(cols) < 2 {
			continue
		}
		left = append(left, cols[0])
		right = append(right, strings.Join(cols[1:], " "))
	}
	if len(left) == 0 {
		return nil, nil
	}

	leftText := strings.Join(left, "\n")
	leftIsVendor := len(left) >= 2 ||
		locale.IsIdentifierLine(leftText) ||
		d.loc.LegalFormPattern.MatchString(textutil.NormalizeKey(leftText))
	if !leftIsVendor {
		return nil, nil
	}

	vendor := &models.EntityBlock{
		Text:       leftText,
		Source:     models.SourceLeftColumn,
		Confidence: confColumn,
	}
	customer := &models.EntityBlock{
		Text:       strings.Join(right, "\n"),
		Source:     models.SourceRightColumn,
		Confidence: confColumn,
	}
	return vendor, customer
}

// inferredVendor falls back to the leading header lines before any stop
// line. Low confidence: it is a guess, not an attribution.
func (d *Detector) inferredVendor(lines []string) *models.EntityBlock {
	var parts []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if d.loc.IsStopLine(trimmed) {
			break
		}
		parts = append(parts, trimmed)
		if len(parts) == blockWindow {
			break
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &models.EntityBlock{
		Text:       strings.Join(parts, "\n"),
		Source:     models.SourceInferred,
		Confidence: confInferred,
	}
}

// customerCode captures "Code client: X" tokens independently of block
// attribution.
func (d *Detector) customerCode(text string) string {
	m := d.loc.CustomerCodePattern.FindStringSubmatch(textutil.NormalizeKey(text))
	if m == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(m[1]))
}

// originalTail maps a normalized capture back onto the original-cased line.
func originalTail(line, normalizedTail string) string {
	normalizedTail = strings.TrimSpace(normalizedTail)
	if normalizedTail == "" {
		return ""
	}
	key := textutil.NormalizeKey(line)
	idx := strings.Index(key, normalizedTail)
	if idx < 0 || idx+len(normalizedTail) > len(line) {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[idx : idx+len(normalizedTail)])
}
