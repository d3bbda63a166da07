package validate

import (
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// FindReportedTotal scans the footer zone for the document-reported total.
// Lines carrying an excl-tax total label win over generic total lines,
// since extracted line totals are excl-tax. Returns nil when no usable
// amount is found.
func FindReportedTotal(footer string, loc *locale.Locale) *float64 {
	if loc == nil {
		loc = locale.Default()
	}
	var fallback *float64
	for _, line := range strings.Split(footer, "\n") {
		if !loc.MatchesTotal(line) {
			continue
		}
		amounts := textutil.AmountPattern.FindAllString(line, -1)
		if len(amounts) == 0 {
			continue
		}
		v, ok := textutil.ParseNumber(amounts[len(amounts)-1])
		if !ok || v <= 0 {
			continue
		}
		key := textutil.NormalizeKey(line)
		if strings.Contains(key, "total ht") || strings.Contains(key, "montant ht") {
			return models.Float64Ptr(v)
		}
		if fallback == nil {
			fallback = models.Float64Ptr(v)
		}
	}
	return fallback
}
