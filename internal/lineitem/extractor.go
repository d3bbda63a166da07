// Package lineitem turns scored table lines into structured invoice lines.
// An ordered cascade of structural parsers is tried per line; whatever
// happens, every candidate line yields exactly one result, at worst a
// placeholder that keeps the raw text and explains the failure.
package lineitem

import (
	"strings"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// candidateFloor separates clear rejections from candidate lines: scores
// above it always produce a result.
const candidateFloor = -5

// Strict-strategy confidence heuristics.
const (
	refConfidenceLong   = 0.9
	refConfidenceShort  = 0.6
	desigConfidenceLong = 0.85
	desigConfidenceLow  = 0.5
	numericConfidence   = 0.9
	computedConfidence  = 0.7
)

// Extractor runs the extraction cascade. It is stateless apart from its
// immutable configuration and safe for concurrent use.
type Extractor struct {
	strategies []strategy
	defaultVAT float64
}

// New builds an extractor. defaultVAT (a percentage, e.g. 20) is stamped on
// lines that parsed without an explicit VAT mention; zero disables stamping.
func New(defaultVAT float64) *Extractor {
	return &Extractor{
		strategies: append(strictStrategies(), looseStrategies()...),
		defaultVAT: defaultVAT,
	}
}

// ExtractWithStats runs the cascade over every candidate line (score above
// candidateFloor) and returns one result per candidate, plus counters.
// The returned slice length always equals the candidate count.
func (e *Extractor) ExtractWithStats(scores []models.LineScore) ([]models.InvoiceLine, models.ExtractionStats) {
	var stats models.ExtractionStats
	lines := make([]models.InvoiceLine, 0, len(scores))

	for _, ls := range scores {
		if ls.Score <= candidateFloor {
			continue
		}
		stats.CandidateLines++
		line := e.extractOne(ls)
		if line.Method != models.MethodPlaceholder {
			stats.ExtractedLines++
		}
		if line.IsCorrupted {
			stats.CorruptedLines++
		}
		if line.NeedsReview {
			stats.ReviewLines++
		}
		lines = append(lines, line)
	}
	return lines, stats
}

// Extract is ExtractWithStats without the counters.
func (e *Extractor) Extract(scores []models.LineScore) []models.InvoiceLine {
	lines, _ := e.ExtractWithStats(scores)
	return lines
}

// extractOne tries each strategy in order; the first parse that passes the
// minimum-data check wins. Failing all, a placeholder is synthesized.
func (e *Extractor) extractOne(ls models.LineScore) models.InvoiceLine {
	for _, st := range e.strategies {
		parsed := st.parse(ls.Text, ls.Index)
		if parsed == nil || !parsed.HasMinimumData() {
			continue
		}
		e.finalize(parsed, st.method, ls)
		return *parsed
	}
	return e.placeholder(ls)
}

// finalize stamps provenance, totals, confidence and corruption flags on a
// successfully parsed line.
func (e *Extractor) finalize(l *models.InvoiceLine, method models.ExtractionMethod, ls models.LineScore) {
	l.RawText = ls.Text
	l.LineIndex = ls.Index
	l.Method = method

	computedTotal := false
	if l.TotalHT == nil || *l.TotalHT <= 0 {
		if total, ok := l.EffectiveTotal(); ok {
			l.TotalHT = models.Float64Ptr(total)
			computedTotal = true
		} else {
			l.TotalHT = nil
		}
	}

	if l.VATRate == nil && e.defaultVAT > 0 {
		l.VATRate = models.Float64Ptr(e.defaultVAT)
	}

	// Loose tiers carry their own fixed bands; strict strategies get the
	// heuristic per-field scores.
	if !l.NeedsReview {
		e.assignConfidence(l, computedTotal)
	} else if computedTotal {
		l.Confidence.Total = looseTotalConfidence
	}

	detectCorruption(l)
}

func (e *Extractor) assignConfidence(l *models.InvoiceLine, computedTotal bool) {
	if l.Reference != "" {
		if len(l.Reference) >= 4 {
			l.Confidence.Reference = refConfidenceLong
		} else {
			l.Confidence.Reference = refConfidenceShort
		}
	}
	if l.Designation != "" {
		if len(l.Designation) >= 3 {
			l.Confidence.Designation = desigConfidenceLong
		} else {
			l.Confidence.Designation = desigConfidenceLow
		}
	}
	if l.Quantity != nil && *l.Quantity > 0 {
		l.Confidence.Quantity = numericConfidence
	}
	if l.UnitPriceHT != nil && *l.UnitPriceHT > 0 {
		l.Confidence.UnitPrice = numericConfidence
	}
	if l.TotalHT != nil && *l.TotalHT > 0 {
		if computedTotal {
			l.Confidence.Total = computedConfidence
		} else {
			l.Confidence.Total = numericConfidence
		}
	}
}

// placeholder synthesizes the no-loss result for an unparseable line: raw
// text kept, a bare reference salvaged when visually present, and a
// corruption reason explaining what defeated the cascade.
func (e *Extractor) placeholder(ls models.LineScore) models.InvoiceLine {
	l := models.InvoiceLine{
		RawText:     ls.Text,
		LineIndex:   ls.Index,
		Method:      models.MethodPlaceholder,
		NeedsReview: true,
	}

	trimmed := strings.TrimSpace(ls.Text)
	if ref := textutil.BarcodePattern.FindString(trimmed); ref != "" {
		l.Reference = ref
	} else if ref := textutil.DashedRefPattern.FindString(trimmed); ref != "" {
		l.Reference = ref
	}
	if l.Reference != "" {
		if len(l.Reference) >= 4 {
			l.Confidence.Reference = refConfidenceShort
		} else {
			l.Confidence.Reference = looseRefConfidence
		}
	}

	if reason, ok := inferPlaceholderCorruption(trimmed, l.Reference); ok {
		l.IsCorrupted = true
		l.CorruptionReason = reason
	}
	return l
}
