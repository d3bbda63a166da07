// Package validate cross-checks extracted invoice lines against the
// document-reported total. It annotates, never blocks: the report carries
// warnings and structured suggestions, and the caller decides what to do
// with IsValid.
package validate

import (
	"fmt"
	"math"

	"github.com/facto-ocr/facto/internal/models"
)

// Validation defaults. A shortfall below AbsTolerance is treated as
// rounding; anything larger means lines are missing. The relative tolerance
// only forgives the over-computed side, where duplicated or mis-merged
// lines inflate the sum.
const (
	DefaultRelTolerance = 0.01
	DefaultAbsTolerance = 1.0
	DefaultAvgLineValue = 350.0

	outlierSigma     = 3.0
	lineRelTolerance = 0.05
	lineAbsTolerance = 1.0
)

// Validator holds the tolerance configuration for one document check.
type Validator struct {
	RelTolerance float64
	AbsTolerance float64
	// AvgLineValue divides the shortfall to estimate missing line count.
	AvgLineValue float64
}

// New returns a validator with the default tolerances.
func New() *Validator {
	return &Validator{
		RelTolerance: DefaultRelTolerance,
		AbsTolerance: DefaultAbsTolerance,
		AvgLineValue: DefaultAvgLineValue,
	}
}

// Validate sums the line totals, compares against the reported document
// total, and collects line-level anomalies.
func (v *Validator) Validate(lines []models.InvoiceLine, reported *float64) models.ValidationReport {
	report := models.ValidationReport{IsValid: true, ReportedTotal: reported}

	totals := make([]float64, 0, len(lines))
	lineIdx := make([]int, 0, len(lines))
	for i := range lines {
		t, ok := lines[i].EffectiveTotal()
		if !ok {
			continue
		}
		report.ComputedTotal += t
		totals = append(totals, t)
		lineIdx = append(lineIdx, i)
	}
	report.ComputedTotal = round2(report.ComputedTotal)

	if reported != nil {
		v.checkTotals(&report, *reported)
	}
	v.checkOutliers(&report, totals, lineIdx)
	v.checkLines(&report, lines)

	return report
}

// checkTotals compares computed against reported. A shortfall beyond the
// absolute tolerance always invalidates and yields a missing-line estimate.
func (v *Validator) checkTotals(report *models.ValidationReport, reported float64) {
	diff := round2(reported - report.ComputedTotal)
	report.Difference = diff

	switch {
	case diff > v.AbsTolerance:
		report.IsValid = false
		report.MissingLineEst = v.estimateMissing(diff)
		msg := fmt.Sprintf(
			"computed total %.2f is %.2f below the reported total %.2f, roughly %d line(s) missing",
			report.ComputedTotal, diff, reported, report.MissingLineEst)
		report.Warnings = append(report.Warnings, msg)
		report.Suggestions = append(report.Suggestions, models.Suggestion{
			Kind:           models.SuggestMissingLines,
			Message:        msg,
			SuggestedValue: models.Float64Ptr(diff),
		})
	case -diff > math.Max(v.RelTolerance*math.Abs(reported), v.AbsTolerance):
		report.IsValid = false
		msg := fmt.Sprintf(
			"computed total %.2f exceeds the reported total %.2f by %.2f",
			report.ComputedTotal, reported, -diff)
		report.Warnings = append(report.Warnings, msg)
		report.Suggestions = append(report.Suggestions, models.Suggestion{
			Kind:    models.SuggestTotalsMismatch,
			Message: msg,
		})
	}
}

// estimateMissing divides the shortfall by the configured average line
// value, never returning less than one line.
func (v *Validator) estimateMissing(shortfall float64) int {
	if v.AvgLineValue <= 0 {
		return 1
	}
	est := int(math.Round(shortfall / v.AvgLineValue))
	if est < 1 {
		est = 1
	}
	return est
}

// checkOutliers flags line totals more than three standard deviations from
// the mean. Needs at least four totals for the statistics to mean anything.
func (v *Validator) checkOutliers(report *models.ValidationReport, totals []float64, lineIdx []int) {
	if len(totals) < 4 {
		return
	}
	var mean float64
	for _, t := range totals {
		mean += t
	}
	mean /= float64(len(totals))

	var variance float64
	for _, t := range totals {
		variance += (t - mean) * (t - mean)
	}
	sigma := math.Sqrt(variance / float64(len(totals)))
	if sigma == 0 {
		return
	}

	for i, t := range totals {
		if math.Abs(t-mean) <= outlierSigma*sigma {
			continue
		}
		idx := lineIdx[i]
		msg := fmt.Sprintf("line %d total %.2f deviates more than %.0f sigma from the mean %.2f",
			idx, t, outlierSigma, mean)
		report.Warnings = append(report.Warnings, msg)
		report.Suggestions = append(report.Suggestions, models.Suggestion{
			Kind:      models.SuggestOutlierLine,
			Message:   msg,
			LineIndex: intPtr(idx),
		})
	}
}

// checkLines flags lines whose recorded total disagrees with quantity x
// price x (1 - discount) beyond 5% or one currency unit.
func (v *Validator) checkLines(report *models.ValidationReport, lines []models.InvoiceLine) {
	for i := range lines {
		l := &lines[i]
		if l.Quantity == nil || l.UnitPriceHT == nil || l.TotalHT == nil {
			continue
		}
		expected := *l.Quantity * *l.UnitPriceHT
		if l.Discount != nil {
			expected *= 1 - *l.Discount/100
		}
		expected = round2(expected)
		delta := math.Abs(expected - *l.TotalHT)
		if delta <= math.Max(lineRelTolerance*math.Abs(*l.TotalHT), lineAbsTolerance) {
			continue
		}
		msg := fmt.Sprintf("line %d total %.2f disagrees with quantity x price = %.2f",
			i, *l.TotalHT, expected)
		report.Warnings = append(report.Warnings, msg)
		report.Suggestions = append(report.Suggestions, models.Suggestion{
			Kind:           models.SuggestInconsistent,
			Message:        msg,
			LineIndex:      intPtr(i),
			SuggestedValue: models.Float64Ptr(expected),
		})
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func intPtr(v int) *int { return &v }
