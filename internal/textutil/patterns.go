package textutil

import "regexp"

// Compiled once at package init; all patterns are read-only and safe to
// share across concurrent extractions.
var (
	// AmountPattern matches a currency amount with a mandatory decimal part,
	// French or dot separator: "1 010,00", "858.50", "12,5".
	AmountPattern = regexp.MustCompile(`\b\d+(?:[ .]\d{3})*[.,]\d{1,2}\b`)

	// BarcodePattern matches a full EAN-style code at line start.
	BarcodePattern = regexp.MustCompile(`^\d{8,14}\b`)

	// TruncatedBarcodePattern matches a 6-7 digit code at line start,
	// typically an EAN with leading digits lost by the OCR.
	TruncatedBarcodePattern = regexp.MustCompile(`^\d{6,7}\b`)

	// DashedRefPattern matches references like "REF-1234" or "AB-12-34".
	DashedRefPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,}(?:-[A-Za-z0-9]+)+\b`)

	// NumericSuffixRefPattern matches references like "SAF7A086" or "MOD123".
	NumericSuffixRefPattern = regexp.MustCompile(`^[A-Za-z]{2,}\d{2,}\b`)

	// IndexMarkerPattern matches a leading line number marker: "1)", "02.",
	// "3 -".
	IndexMarkerPattern = regexp.MustCompile(`^\d{1,2}[).\-] `)

	// PercentPattern matches a discount or VAT percentage token.
	PercentPattern = regexp.MustCompile(`\b\d{1,2}(?:[.,]\d{1,2})?\s?%`)

	// QuantityPattern matches a small standalone integer as found in the
	// quantity column. Space-delimited so decimal fractions do not trigger.
	QuantityPattern = regexp.MustCompile(`(?:^| )\d{1,3}(?: |$)`)

	// BareNumberPattern matches any integer or decimal token.
	BareNumberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

	// ArtifactPattern matches OCR debris that never occurs in clean invoice
	// lines.
	ArtifactPattern = regexp.MustCompile(`[\[\]{}|]`)

	// ConcatenatedDecimalsPattern matches two decimal numbers fused without
	// separation, e.g. "858.50129.00".
	ConcatenatedDecimalsPattern = regexp.MustCompile(`\d+[.,]\d{2}\d+[.,]\d{2}`)

	// GarbledPattern matches a multi-dot letter soup like "a.b.c.d" that OCR
	// produces from decorative glyphs.
	GarbledPattern = regexp.MustCompile(`(?:[A-Za-z]{1,2}\.){3,}`)

	// WideGapPattern finds the internal gap of a dual-column line.
	WideGapPattern = regexp.MustCompile(`\S\s{4,}\S`)
)

// CountAmounts returns the number of currency-amount substrings in the line.
func CountAmounts(line string) int {
	return len(AmountPattern.FindAllString(line, -1))
}

// HasAmount reports whether the line contains at least one currency amount.
func HasAmount(line string) bool {
	return AmountPattern.MatchString(line)
}
