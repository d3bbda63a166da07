package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanOCRText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keeps internal space runs",
			input:    "REF   123    4.00",
			expected: "REF   123    4.00",
		},
		{
			name:     "normalizes CRLF",
			input:    "line one\r\nline two\r",
			expected: "line one\nline two\n",
		},
		{
			name:     "strips BOM and replacement chars",
			input:    "\uFEFFFACTURE \uFFFD N\u00b01",
			expected: "FACTURE  N\u00b01",
		},
		{
			name:     "tabs become column separators",
			input:    "QTE\tPRIX\tTOTAL",
			expected: "QTE  PRIX  TOTAL",
		},
		{
			name:     "non-breaking spaces become plain spaces",
			input:    "1\u00a0010,00",
			expected: "1 010,00",
		},
		{
			name:     "leading and trailing whitespace trimmed per line",
			input:    "abc  \n  def ",
			expected: "abc\ndef",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanOCRText(tt.input))
		})
	}
}

func TestCleanOCRTextIdempotent(t *testing.T) {
	inputs := []string{
		"197737121563  SAFILO 7A086\t1  1010,00  15%  858,50",
		"\uFEFF  FACTURE \r\n N° : 20250388  ",
		"already clean",
	}
	for _, in := range inputs {
		once := CleanOCRText(in)
		assert.Equal(t, once, CleanOCRText(once), "clean must be idempotent for %q", in)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"french grouped", "1 010,00", 1010.0, true},
		{"plain decimal", "1010.00", 1010.0, true},
		{"dot grouping comma decimal", "1.010,00", 1010.0, true},
		{"comma decimal only", "12,5", 12.5, true},
		{"integer", "42", 42, true},
		{"currency suffix", "858,50 DH", 858.50, true},
		{"apostrophe grouping", "1'010.00", 1010.0, true},
		{"non breaking space", "1 010,00", 1010.0, true},
		{"dot thousands no decimals", "1.010", 1010.0, true},
		{"garbage", "abc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseNumber(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.expected, v, 1e-9)
			}
		})
	}
}

func TestParseNumberRoundTrip(t *testing.T) {
	// French and plain renderings of the same value must agree.
	fr, ok := ParseNumber("1 010,00")
	require.True(t, ok)
	plain, ok := ParseNumber("1010.00")
	require.True(t, ok)
	assert.InDelta(t, fr, plain, 1e-9)
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Siege social", FoldAccents("Siège social"))
	assert.Equal(t, "Facture reglee", FoldAccents("Facture réglée"))
	assert.Equal(t, "plain", FoldAccents("plain"))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "siege social", NormalizeKey("  Siège Social "))
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "four columns",
			input:    "REF123  LUNETTES SOLAIRE  2  450,00",
			expected: []string{"REF123", "LUNETTES SOLAIRE", "2", "450,00"},
		},
		{
			name:     "single column",
			input:    "just one field",
			expected: []string{"just one field"},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitColumns(tt.input))
		})
	}
}

func TestCountAmounts(t *testing.T) {
	assert.Equal(t, 3, CountAmounts("1 1010.00 15% 858.50 12,00"))
	assert.Equal(t, 0, CountAmounts("DESIGNATION QTE PU"))
}

func TestDigitRatio(t *testing.T) {
	assert.Greater(t, DigitRatio("1010.00 858.50"), 0.9)
	assert.Less(t, DigitRatio("LUNETTES DE SOLEIL"), 0.2)
}

func TestSymbolCount(t *testing.T) {
	assert.Equal(t, 0, SymbolCount("SAFILO 7A086 54.19"))
	assert.Equal(t, 3, SymbolCount("pe = ce [0286|"))
}

func TestPatterns(t *testing.T) {
	assert.True(t, BarcodePattern.MatchString("197737121563 SAFILO"))
	assert.False(t, BarcodePattern.MatchString("SAFILO 197737121563"))
	assert.True(t, TruncatedBarcodePattern.MatchString("1977371 SAFILO"))
	assert.True(t, DashedRefPattern.MatchString("REF-1234 verre"))
	assert.True(t, NumericSuffixRefPattern.MatchString("SAF7A086 monture"))
	assert.True(t, PercentPattern.MatchString("remise 15%"))
	assert.True(t, ArtifactPattern.MatchString("pe [ce] 0286"))
	assert.True(t, ConcatenatedDecimalsPattern.MatchString("858.50129.00"))
	assert.True(t, GarbledPattern.MatchString("a.b.c.d soup"))
}
