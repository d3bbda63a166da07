package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/textutil"
)

func TestScoreLineRejections(t *testing.T) {
	s := NewScorer(locale.French(), 0)
	tests := []struct {
		name     string
		line     string
		criteria string
	}{
		{"too short", "ABC 12", "too_short"},
		{"total keyword", "TOTAL TTC : 2 110,20", "total_keyword"},
		{"header keyword without amount", "FACTURE N° 20250388 Client OPTIQUE", "header_keyword"},
		{"noise keyword", "Conditions generales de vente applicables", "noise_keyword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := s.ScoreLine(tt.line, 0, "", "")
			assert.Equal(t, RejectScore, ls.Score)
			require.Len(t, ls.Criteria, 1)
			assert.Equal(t, tt.criteria, ls.Criteria[0])
			assert.False(t, ls.IsProductLine(s.Threshold()))
		})
	}
}

func TestScoreLineProduct(t *testing.T) {
	s := NewScorer(locale.French(), 0)

	ls := s.ScoreLine("197737121563 SAFILO 7A086 54.19 GREY 1 1010.00 15% 858.50", 0, "", "")
	assert.True(t, ls.IsProductLine(DefaultThreshold))
	assert.Contains(t, ls.Criteria, "barcode")

	ls = s.ScoreLine("REF-1234 VERRE PROGRESSIF 2 350,00 700,00", 1, "", "")
	assert.True(t, ls.IsProductLine(DefaultThreshold))
	assert.Contains(t, ls.Criteria, "dashed_reference")
}

func TestScoreLineShortCircuit(t *testing.T) {
	s := NewScorer(locale.French(), 3)
	// A full barcode alone reaches the threshold: scoring stops there.
	ls := s.ScoreLine("197737121563 SAFILO 1 1010.00 858.50", 0, "", "")
	assert.Equal(t, 3, ls.Score)
	assert.Equal(t, []string{"barcode"}, ls.Criteria)
}

func TestScoreLineAccumulation(t *testing.T) {
	// High threshold disables the short circuit so all criteria show up.
	s := NewScorer(locale.French(), 50)
	ls := s.ScoreLine("197737121563 SAFILO 7A086 1 1010.00 15% 858.50", 0, "", "")

	assert.Contains(t, ls.Criteria, "barcode")
	assert.Contains(t, ls.Criteria, "percentage")
	assert.Contains(t, ls.Criteria, "multiple_amounts")
	assert.Contains(t, ls.Criteria, "quantity_token")
	assert.GreaterOrEqual(t, ls.Score, 7)
}

func TestScoreLineTruncatedBarcode(t *testing.T) {
	s := NewScorer(locale.French(), 50)
	ls := s.ScoreLine("1977371 SAFILO MONTURE METAL", 0, "", "")
	assert.Contains(t, ls.Criteria, "truncated_barcode")
}

func TestScoreLineAdjacentBarcodeBoost(t *testing.T) {
	s := NewScorer(locale.French(), 50)
	with := s.ScoreLine("SAFILO MONTURE METAL DOREE", 1, "197737121563 SAFILO 1 1010.00 858.50", "")
	without := s.ScoreLine("SAFILO MONTURE METAL DOREE", 1, "", "")
	assert.Equal(t, with.Score, without.Score+1)
	assert.Contains(t, with.Criteria, "adjacent_barcode")
}

func TestScoreLinesReturnsAll(t *testing.T) {
	s := NewScorer(locale.French(), 0)
	lines := []string{
		"197737121563 SAFILO 7A086 1 1010.00 858.50",
		"court",
		"TOTAL : 858.50",
	}
	scores := s.ScoreLines(lines)
	require.Len(t, scores, len(lines))
	assert.True(t, scores[0].IsProductLine(DefaultThreshold))
	assert.Equal(t, RejectScore, scores[1].Score)
	assert.Equal(t, RejectScore, scores[2].Score)
}

func TestScoreLineColumnarAfterCleaning(t *testing.T) {
	s := NewScorer(locale.French(), 0)

	// Tabs in raw OCR output become two-space separators after cleaning,
	// so the columnar criterion still sees the table layout.
	clean := textutil.CleanOCRText("Monture enfant\t2\tU\t450.00")
	require.Greater(t, len(textutil.SplitColumns(clean)), 1)

	ls := s.ScoreLine(clean, 0, "", "")
	assert.True(t, ls.IsProductLine(DefaultThreshold))
	assert.Contains(t, ls.Criteria, "columnar_layout")
}
