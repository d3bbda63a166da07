package lineitem

import (
	"regexp"
	"strings"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// Fixed confidence bands of the loose tiers. Loose results always carry
// NeedsReview.
const (
	looseRefConfidence   = 0.4
	looseDesigConfidence = 0.5
	looseQtyConfidence   = 0.6
	loosePriceConfidence = 0.6
	looseTotalConfidence = 0.5
)

var (
	looseQtyPricePair = regexp.MustCompile(`(?:^|\s)(\d{1,3})\s*[x×*]\s*(\d+[.,]\d{1,2})`)
	numberToken       = regexp.MustCompile(`^\d+(?:[.,]\d{1,2})?$`)
)

// looseStrategies is the last-chance cascade: progressively less structure,
// fixed low confidence, mandatory review flag.
func looseStrategies() []strategy {
	return []strategy{
		{models.MethodLooseExtended, parseLooseExtended},
		{models.MethodLooseCodeNumbers, parseLooseCodeNumbers},
		{models.MethodLooseQtyPrice, parseLooseQtyPrice},
		{models.MethodLooseNumericTokens, parseLooseNumericTokens},
	}
}

// finalizeLoose stamps the fixed confidence bands and the review flag.
func finalizeLoose(l *models.InvoiceLine) *models.InvoiceLine {
	l.NeedsReview = true
	if l.Reference != "" {
		l.Confidence.Reference = looseRefConfidence
	}
	if l.Designation != "" {
		l.Confidence.Designation = looseDesigConfidence
	}
	if l.Quantity != nil {
		l.Confidence.Quantity = looseQtyConfidence
	}
	if l.UnitPriceHT != nil {
		l.Confidence.UnitPrice = loosePriceConfidence
	}
	if l.TotalHT != nil {
		l.Confidence.Total = looseTotalConfidence
	}
	return l
}

// parseLooseExtended is the maximally tolerant rendition of the extended
// shape: artifacts are stripped from the whole line before the tail parse,
// and the leading code may be any alphanumeric token.
func parseLooseExtended(line string, index int) *models.InvoiceLine {
	cleaned := stripArtifacts(line)
	fields := strings.Fields(cleaned)
	if len(fields) < 4 || !alnumCode.MatchString(fields[0]) {
		return nil
	}
	t, ok := parseTail(fields, false, true)
	if !ok {
		return nil
	}
	l := &models.InvoiceLine{
		Reference:   fields[0],
		Designation: strings.Join(fields[1:t.desigEnd], " "),
		Quantity:    models.Float64Ptr(t.qty),
		UnitPriceHT: models.Float64Ptr(t.price),
		Discount:    t.discount,
		TotalHT:     models.Float64Ptr(t.total),
	}
	return finalizeLoose(l)
}

// parseLooseCodeNumbers takes any leading alphanumeric code followed by two
// or more bare numbers and infers the field meaning positionally: a first
// number that is small and integral is a quantity, the next a price, the
// last a total.
func parseLooseCodeNumbers(line string, index int) *models.InvoiceLine {
	fields := strings.Fields(line)
	if len(fields) < 3 || !alnumCode.MatchString(fields[0]) || len(fields[0]) < 2 {
		return nil
	}
	var numbers []float64
	var words []string
	for _, tok := range fields[1:] {
		if numberToken.MatchString(tok) {
			if v, ok := textutil.ParseNumber(tok); ok {
				numbers = append(numbers, v)
				continue
			}
		}
		words = append(words, tok)
	}
	if len(numbers) < 2 {
		return nil
	}

	l := &models.InvoiceLine{
		Reference:   fields[0],
		Designation: strings.Join(words, " "),
	}
	rest := numbers
	if rest[0] <= 100 && rest[0] == float64(int(rest[0])) {
		l.Quantity = models.Float64Ptr(rest[0])
		rest = rest[1:]
	}
	switch len(rest) {
	case 0:
		return nil
	case 1:
		l.UnitPriceHT = models.Float64Ptr(rest[0])
	default:
		l.UnitPriceHT = models.Float64Ptr(rest[0])
		l.TotalHT = models.Float64Ptr(rest[len(rest)-1])
	}
	return finalizeLoose(l)
}

// parseLooseQtyPrice finds a bare "integer x decimal" pair anywhere.
func parseLooseQtyPrice(line string, index int) *models.InvoiceLine {
	m := looseQtyPricePair.FindStringSubmatch(line)
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
	l := &models.InvoiceLine{
		Designation: designationResidue(line),
		Quantity:    models.Float64Ptr(qty),
		UnitPriceHT: models.Float64Ptr(price),
	}
	return finalizeLoose(l)
}

// parseLooseNumericTokens is the loosest tier: any line holding two or more
// numeric tokens outside the 2000-2100 year band. The last number is the
// total, the largest of the rest the price, and any small integer the
// quantity. The designation is the non-numeric residue.
func parseLooseNumericTokens(line string, index int) *models.InvoiceLine {
	var numbers []float64
	for _, tok := range strings.Fields(line) {
		if !numberToken.MatchString(tok) {
			continue
		}
		v, ok := textutil.ParseNumber(tok)
		if !ok {
			continue
		}
		if v >= 2000 && v <= 2100 && v == float64(int(v)) {
			continue // likely a year
		}
		numbers = append(numbers, v)
	}
	if len(numbers) < 2 {
		return nil
	}

	l := &models.InvoiceLine{Designation: designationResidue(line)}
	l.TotalHT = models.Float64Ptr(numbers[len(numbers)-1])

	mid := numbers[:len(numbers)-1]
	price := mid[0]
	for _, v := range mid {
		if v > price {
			price = v
		}
	}
	l.UnitPriceHT = models.Float64Ptr(price)

	for _, v := range mid {
		if v <= 100 && v == float64(int(v)) && v > 0 {
			qty := v
			l.Quantity = &qty
			break
		}
	}
	return finalizeLoose(l)
}

// designationResidue joins the non-numeric tokens of a line.
func designationResidue(line string) string {
	var words []string
	for _, tok := range strings.Fields(line) {
		if numberToken.MatchString(tok) || percentToken.MatchString(tok) {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}
