package contact

import (
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// ExtractName recovers the supplier name from the header zone and returns
// the result plus the line index it came from (-1 when nothing matched).
func (e *Extractor) ExtractName(header string) (models.NameResult, int) {
	lines := strings.Split(header, "\n")

	// Explicit vendor label wins.
	for i, line := range lines {
		m := e.loc.VendorLabelPattern.FindStringSubmatch(textutil.NormalizeKey(line))
		if m == nil {
			continue
		}
		value := originalTail(line, m[1])
		if value != "" {
			return models.NameResult{Value: value, Confidence: 0.9, Pattern: "label"}, i
		}
	}

	// A legal-form marker (SARL, SA, SAS...) identifies a company line.
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || e.loc.IsStopLine(trimmed) {
			continue
		}
		if e.loc.LegalFormPattern.MatchString(textutil.NormalizeKey(trimmed)) {
			return models.NameResult{Value: trimmed, Confidence: 0.8, Pattern: "legal_form"}, i
		}
	}

	// Fallback: the first substantial line that is neither a stop line nor
	// an address-looking line.
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !e.looksLikeName(trimmed) {
			continue
		}
		return models.NameResult{Value: trimmed, Confidence: 0.5, Pattern: "first_line"}, i
	}

	return models.NameResult{}, -1
}

// looksLikeName reports whether a line is a plausible company-name line:
// mostly letters, not a stop/address/city line.
func (e *Extractor) looksLikeName(line string) bool {
	if len(line) < 3 || e.loc.IsStopLine(line) {
		return false
	}
	if e.loc.HasStreetKeyword(line) || e.loc.HasLocationKeyword(line) {
		return false
	}
	if _, ok := locale.LookupCity(line); ok {
		return false
	}
	letters, digits := 0, 0
	for _, r := range line {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r != ' ':
			letters++
		}
	}
	return letters >= 3 && digits <= letters
}
