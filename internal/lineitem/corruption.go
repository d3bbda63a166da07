package lineitem

import (
	"strings"
	"unicode"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// detectCorruption inspects a successfully parsed line for structural signs
// that the result should not be trusted. It runs whatever strategy matched.
func detectCorruption(l *models.InvoiceLine) {
	reason, corrupted := corruptionReason(l)
	if !corrupted {
		return
	}
	l.IsCorrupted = true
	l.NeedsReview = true
	l.CorruptionReason = reason
}

func corruptionReason(l *models.InvoiceLine) (models.CorruptionReason, bool) {
	if ref := l.Reference; ref != "" {
		if len(ref) <= 2 && !textutil.IsNumericToken(ref) {
			return models.CorruptShortReference, true
		}
		if hasSymbolRunes(ref) {
			return models.CorruptSymbolReference, true
		}
	}
	if d := l.Designation; d != "" {
		if startsWithSymbol(d) {
			return models.CorruptSymbolDesignation, true
		}
		if textutil.SymbolCount(d) > 2 {
			return models.CorruptSymbolDesignation, true
		}
		if textutil.GarbledPattern.MatchString(d) {
			return models.CorruptGarbledDesignation, true
		}
	}
	if textutil.ArtifactPattern.MatchString(l.RawText) &&
		!textutil.BarcodePattern.MatchString(strings.TrimSpace(l.RawText)) {
		return models.CorruptOCRArtifacts, true
	}
	return "", false
}

// inferPlaceholderCorruption explains why no strategy could parse the line.
// It runs only on the placeholder path, where the structured fields are
// empty and only a salvaged reference may be present.
func inferPlaceholderCorruption(raw, salvagedRef string) (models.CorruptionReason, bool) {
	amounts := textutil.CountAmounts(raw)
	hasPct := textutil.PercentPattern.MatchString(raw)
	hasQty := textutil.QuantityPattern.MatchString(raw)
	hasArtifacts := textutil.ArtifactPattern.MatchString(raw) ||
		textutil.ConcatenatedDecimalsPattern.MatchString(raw)

	switch {
	case hasArtifacts:
		return models.CorruptOCRArtifacts, true
	case salvagedRef != "" && len(salvagedRef) < 4 && amounts > 0:
		return models.CorruptPartialReference, true
	case salvagedRef == "" && amounts > 0 && hasPct:
		return models.CorruptUnrecognized, true
	case salvagedRef == "" && (amounts > 0 || hasPct) && hasQty:
		return models.CorruptOCRUnreadable, true
	case amounts >= 2 && hasQty:
		return models.CorruptParsingFailed, true
	}
	return "", false
}

func startsWithSymbol(s string) bool {
	r := []rune(s)[0]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func hasSymbolRunes(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '-', '.', '/':
			continue
		}
		return true
	}
	return false
}
