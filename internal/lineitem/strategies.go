package lineitem

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// strategy is one structural parser of the cascade. parse returns nil when
// the line does not fit the shape; the combinator validates whatever comes
// back before accepting it.
type strategy struct {
	method models.ExtractionMethod
	parse  func(line string, index int) *models.InvoiceLine
}

// strictStrategies is the ordered cascade tried before the loose fallback
// tiers. Order is part of the contract: most specific shape first.
func strictStrategies() []strategy {
	return []strategy{
		{models.MethodBarcode, parseBarcode},
		{models.MethodExtended, parseExtended},
		{models.MethodWithDiscount, parseWithDiscount},
		{models.MethodFull, parseFull},
		{models.MethodSimple, parseSimple},
		{models.MethodFallback, parseFallback},
	}
}

var (
	fullBarcodeToken = regexp.MustCompile(`^\d{8,14}$`)
	percentToken     = regexp.MustCompile(`^\d{1,2}(?:[.,]\d{1,2})?%$`)
	strictAmount     = regexp.MustCompile(`^\d{1,6}(?:[.,]\d{1,2})$`)
	alnumCode        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9./-]*$`)
	unitToken        = regexp.MustCompile(`^(?i:u|pce|pcs|paire|bte|pc)$`)
	qtyPricePair     = regexp.MustCompile(`(?:^|\s)(\d{1,3})\s*[x×*]\s*(\d+[.,]\d{1,2})(?:\s|$)`)
	qtyToken         = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{1,2})?$`)
	priceRunToken    = regexp.MustCompile(`^\d+(?:[.,]\d{1,2})?$`)
	artifactChars    = "[]{}|"
)

// tail holds the numeric tail of a product line, parsed right to left.
type tail struct {
	qty      float64
	price    float64
	total    float64
	discount *float64
	desigEnd int // index one past the last designation token
}

// parseTail reads total, optional discount, price and quantity from the end
// of the token list. tolerant additionally strips OCR artifact characters
// from the amount tokens before parsing.
func parseTail(fields []string, requireDiscount, tolerant bool) (tail, bool) {
	idx := len(fields) - 1
	if idx < 3 {
		return tail{}, false
	}

	total, ok := amountValue(fields[idx], tolerant)
	if !ok {
		return tail{}, false
	}
	idx--

	var discount *float64
	if percentToken.MatchString(fields[idx]) {
		v, ok := textutil.ParseNumber(strings.TrimSuffix(fields[idx], "%"))
		if !ok {
			return tail{}, false
		}
		discount = &v
		idx--
	} else if requireDiscount {
		return tail{}, false
	}

	if idx < 2 {
		return tail{}, false
	}
	price, ok := amountValue(fields[idx], tolerant)
	if !ok {
		return tail{}, false
	}
	idx--

	qty, ok := quantityValue(fields[idx])
	if !ok {
		return tail{}, false
	}

	return tail{qty: qty, price: price, total: total, discount: discount, desigEnd: idx}, true
}

// amountValue parses a currency-amount token. Strict mode requires a decimal
// separator; tolerant mode first drops bracket/brace/pipe debris and stray
// 'f' glyphs inside the numeric run.
func amountValue(tok string, tolerant bool) (float64, bool) {
	if tolerant {
		tok = stripArtifacts(tok)
	}
	if !strictAmount.MatchString(strings.ReplaceAll(tok, " ", "")) {
		return 0, false
	}
	return textutil.ParseNumber(tok)
}

// quantityValue accepts a small count: integer or half-step decimal, at most
// three integer digits.
func quantityValue(tok string) (float64, bool) {
	if !qtyToken.MatchString(tok) {
		return 0, false
	}
	v, ok := textutil.ParseNumber(tok)
	if !ok || v <= 0 || v > 999 {
		return 0, false
	}
	return v, true
}

// stripArtifacts removes OCR debris a damaged price run accumulates.
func stripArtifacts(tok string) string {
	var b strings.Builder
	for i, r := range tok {
		if strings.ContainsRune(artifactChars, r) {
			continue
		}
		// A stray 'f' glyph glued to digits is a misread currency mark.
		if (r == 'f' || r == 'F') && i > 0 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseBarcode handles the canonical shape: EAN, designation, quantity,
// unit price, optional discount, total.
func parseBarcode(line string, index int) *models.InvoiceLine {
	fields := strings.Fields(line)
	if len(fields) < 5 || !fullBarcodeToken.MatchString(fields[0]) {
		return nil
	}
	t, ok := parseTail(fields, false, false)
	if !ok || t.desigEnd < 1 {
		return nil
	}
	return &models.InvoiceLine{
		Reference:   fields[0],
		Designation: strings.Join(fields[1:t.desigEnd], " "),
		Quantity:    models.Float64Ptr(t.qty),
		UnitPriceHT: models.Float64Ptr(t.price),
		Discount:    t.discount,
		TotalHT:     models.Float64Ptr(t.total),
	}
}

// parseExtended is the barcode shape with OCR-damaged amount fields:
// brackets, braces, pipes and stray 'f' glyphs inside the numeric runs.
func parseExtended(line string, index int) *models.InvoiceLine {
	fields := strings.Fields(line)
	if len(fields) < 5 || !fullBarcodeToken.MatchString(stripArtifacts(fields[0])) {
		return nil
	}
	t, ok := parseTail(fields, false, true)
	if !ok || t.desigEnd < 1 {
		return nil
	}
	return &models.InvoiceLine{
		Reference:   stripArtifacts(fields[0]),
		Designation: strings.Join(fields[1:t.desigEnd], " "),
		Quantity:    models.Float64Ptr(t.qty),
		UnitPriceHT: models.Float64Ptr(t.price),
		Discount:    t.discount,
		TotalHT:     models.Float64Ptr(t.total),
	}
}

// parseWithDiscount handles an alphanumeric (not necessarily numeric) code
// with a mandatory percentage between price and total.
func parseWithDiscount(line string, index int) *models.InvoiceLine {
	fields := strings.Fields(line)
	if len(fields) < 5 || !alnumCode.MatchString(fields[0]) || len(fields[0]) < 2 {
		return nil
	}
	t, ok := parseTail(fields, true, false)
	if !ok || t.desigEnd < 1 {
		return nil
	}
	return &models.InvoiceLine{
		Reference:   fields[0],
		Designation: strings.Join(fields[1:t.desigEnd], " "),
		Quantity:    models.Float64Ptr(t.qty),
		UnitPriceHT: models.Float64Ptr(t.price),
		Discount:    t.discount,
		TotalHT:     models.Float64Ptr(t.total),
	}
}

// parseFull handles a referenceless line: free-text designation, quantity,
// optional unit token, price and total.
func parseFull(line string, index int) *models.InvoiceLine {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil
	}
	idx := len(fields) - 1
	total, ok := amountValue(fields[idx], false)
	if !ok {
		return nil
	}
	idx--
	price, ok := amountValue(fields[idx], false)
	if !ok {
		return nil
	}
	idx--
	unit := ""
	if idx >= 1 && unitToken.MatchString(fields[idx]) {
		unit = fields[idx]
		idx--
	}
	if idx < 1 {
		return nil
	}
	qty, ok := quantityValue(fields[idx])
	if !ok {
		return nil
	}
	designation := strings.Join(fields[:idx], " ")
	if !hasLetters(designation) {
		return nil
	}
	return &models.InvoiceLine{
		Designation: designation,
		Quantity:    models.Float64Ptr(qty),
		Unit:        unit,
		UnitPriceHT: models.Float64Ptr(price),
		TotalHT:     models.Float64Ptr(total),
	}
}

// parseSimple handles a bare "quantity x price" pair anywhere in the line.
// The designation is synthesized from the line index.
func parseSimple(line string, index int) *models.InvoiceLine {
	m := qtyPricePair.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	qty, ok := textutil.ParseNumber(m[1])
	if !ok || qty <= 0 {
		return nil
	}
	price, ok := textutil.ParseNumber(m[2])
	if !ok {
		return nil
	}
	return &models.InvoiceLine{
		Designation: fmt.Sprintf("Article (ligne %d)", index+1),
		Quantity:    models.Float64Ptr(qty),
		UnitPriceHT: models.Float64Ptr(price),
	}
}

// parseFallback handles any alphanumeric-leading token of four or more
// characters followed by free text, a quantity and a price-like numeric run.
func parseFallback(line string, index int) *models.InvoiceLine {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields[0]) < 4 || !alnumCode.MatchString(fields[0]) {
		return nil
	}
	idx := len(fields) - 1
	price, ok := numericRun(fields[idx])
	if !ok {
		return nil
	}
	idx--
	qty, ok := quantityValue(fields[idx])
	if !ok {
		return nil
	}
	return &models.InvoiceLine{
		Reference:   fields[0],
		Designation: strings.Join(fields[1:idx], " "),
		Quantity:    models.Float64Ptr(qty),
		UnitPriceHT: models.Float64Ptr(price),
	}
}

// numericRun parses a price-like token with or without decimals.
func numericRun(tok string) (float64, bool) {
	if !priceRunToken.MatchString(tok) {
		return 0, false
	}
	return textutil.ParseNumber(tok)
}

func hasLetters(s string) bool {
	count := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			count++
		}
	}
	return count >= 2
}
