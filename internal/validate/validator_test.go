package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facto-ocr/facto/internal/models"
)

func lineWithTotal(total float64) models.InvoiceLine {
	return models.InvoiceLine{
		Reference: "REF",
		TotalHT:   models.Float64Ptr(total),
	}
}

func TestValidateShortfallEstimatesMissingLines(t *testing.T) {
	v := New()

	lines := []models.InvoiceLine{
		lineWithTotal(858.50),
		lineWithTotal(858.50),
		lineWithTotal(858.50),
	}
	report := v.Validate(lines, models.Float64Ptr(2600.00))

	assert.False(t, report.IsValid)
	assert.InDelta(t, 2575.50, report.ComputedTotal, 0.001)
	assert.InDelta(t, 24.50, report.Difference, 0.001)
	assert.GreaterOrEqual(t, report.MissingLineEst, 1)

	var found bool
	for _, s := range report.Suggestions {
		if s.Kind == models.SuggestMissingLines {
			found = true
			require.NotNil(t, s.SuggestedValue)
			assert.InDelta(t, 24.50, *s.SuggestedValue, 0.001)
		}
	}
	assert.True(t, found, "expected a missing-line suggestion")
	assert.NotEmpty(t, report.Warnings)
}

func TestValidateExactMatch(t *testing.T) {
	v := New()

	lines := []models.InvoiceLine{lineWithTotal(1000.00), lineWithTotal(1600.00)}
	report := v.Validate(lines, models.Float64Ptr(2600.00))

	assert.True(t, report.IsValid)
	assert.Zero(t, report.Difference)
	assert.Zero(t, report.MissingLineEst)
	assert.Empty(t, report.Suggestions)
}

func TestValidateOverComputedBeyondTolerance(t *testing.T) {
	v := New()

	lines := []models.InvoiceLine{lineWithTotal(2700.00)}
	report := v.Validate(lines, models.Float64Ptr(2600.00))

	assert.False(t, report.IsValid)
	require.Len(t, report.Suggestions, 1)
	assert.Equal(t, models.SuggestTotalsMismatch, report.Suggestions[0].Kind)
}

func TestValidateOverComputedWithinRelativeTolerance(t *testing.T) {
	v := New()

	// 2610 vs 2600: one percent of the reported total forgives it.
	lines := []models.InvoiceLine{lineWithTotal(2610.00)}
	report := v.Validate(lines, models.Float64Ptr(2600.00))

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Suggestions)
}

func TestValidateShortfallWithinAbsoluteTolerance(t *testing.T) {
	v := New()

	lines := []models.InvoiceLine{lineWithTotal(2599.50)}
	report := v.Validate(lines, models.Float64Ptr(2600.00))

	assert.True(t, report.IsValid)
	assert.Zero(t, report.MissingLineEst)
}

func TestValidateNoReportedTotal(t *testing.T) {
	v := New()

	lines := []models.InvoiceLine{lineWithTotal(100.00)}
	report := v.Validate(lines, nil)

	assert.True(t, report.IsValid)
	assert.Nil(t, report.ReportedTotal)
	assert.InDelta(t, 100.00, report.ComputedTotal, 0.001)
}

func TestValidateComputesMissingLineTotals(t *testing.T) {
	v := New()

	line := models.InvoiceLine{
		Reference:   "REF",
		Quantity:    models.Float64Ptr(2),
		UnitPriceHT: models.Float64Ptr(500),
		Discount:    models.Float64Ptr(10),
	}
	report := v.Validate([]models.InvoiceLine{line}, models.Float64Ptr(900.00))

	assert.True(t, report.IsValid)
	assert.InDelta(t, 900.00, report.ComputedTotal, 0.001)
}

func TestValidateFlagsOutlierLines(t *testing.T) {
	v := New()

	var lines []models.InvoiceLine
	for i := 0; i < 10; i++ {
		lines = append(lines, lineWithTotal(100.00))
	}
	lines = append(lines, lineWithTotal(1000.00))

	report := v.Validate(lines, nil)

	var outliers []models.Suggestion
	for _, s := range report.Suggestions {
		if s.Kind == models.SuggestOutlierLine {
			outliers = append(outliers, s)
		}
	}
	require.Len(t, outliers, 1)
	require.NotNil(t, outliers[0].LineIndex)
	assert.Equal(t, 10, *outliers[0].LineIndex)
}

func TestValidateFlagsInconsistentLine(t *testing.T) {
	v := New()

	line := models.InvoiceLine{
		Reference:   "REF",
		Quantity:    models.Float64Ptr(2),
		UnitPriceHT: models.Float64Ptr(100),
		TotalHT:     models.Float64Ptr(250),
	}
	report := v.Validate([]models.InvoiceLine{line}, nil)

	var found bool
	for _, s := range report.Suggestions {
		if s.Kind == models.SuggestInconsistent {
			found = true
			require.NotNil(t, s.SuggestedValue)
			assert.InDelta(t, 200.00, *s.SuggestedValue, 0.001)
		}
	}
	assert.True(t, found, "expected an inconsistent-line suggestion")
}
