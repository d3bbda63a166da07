package models

// ExtractionMethod identifies which parsing strategy produced an InvoiceLine.
type ExtractionMethod string

const (
	MethodBarcode            ExtractionMethod = "barcode"
	MethodExtended           ExtractionMethod = "extended"
	MethodWithDiscount       ExtractionMethod = "with_discount"
	MethodFull               ExtractionMethod = "full"
	MethodSimple             ExtractionMethod = "simple"
	MethodFallback           ExtractionMethod = "fallback"
	MethodLooseExtended      ExtractionMethod = "loose_extended"
	MethodLooseCodeNumbers   ExtractionMethod = "loose_code_numbers"
	MethodLooseQtyPrice      ExtractionMethod = "loose_qty_price"
	MethodLooseNumericTokens ExtractionMethod = "loose_numeric_tokens"
	MethodPlaceholder        ExtractionMethod = "placeholder"
)

// IsValid reports whether m is one of the known extraction methods.
func (m ExtractionMethod) IsValid() bool {
	switch m {
	case MethodBarcode, MethodExtended, MethodWithDiscount, MethodFull,
		MethodSimple, MethodFallback, MethodLooseExtended,
		MethodLooseCodeNumbers, MethodLooseQtyPrice, MethodLooseNumericTokens,
		MethodPlaceholder:
		return true
	}
	return false
}

// CorruptionReason explains why a line was flagged as untrustworthy.
type CorruptionReason string

const (
	CorruptShortReference     CorruptionReason = "short_reference"
	CorruptSymbolDesignation  CorruptionReason = "symbol_designation"
	CorruptSymbolReference    CorruptionReason = "symbol_reference"
	CorruptGarbledDesignation CorruptionReason = "garbled_designation"
	CorruptOCRArtifacts       CorruptionReason = "ocr_artifacts"
	CorruptOCRUnreadable      CorruptionReason = "ocr_unreadable"
	CorruptParsingFailed      CorruptionReason = "parsing_failed"
	CorruptPartialReference   CorruptionReason = "partial_reference"
	CorruptUnrecognized       CorruptionReason = "structure_unrecognized"
)

// IsValid reports whether r is one of the known corruption reasons.
func (r CorruptionReason) IsValid() bool {
	switch r {
	case CorruptShortReference, CorruptSymbolDesignation, CorruptSymbolReference,
		CorruptGarbledDesignation, CorruptOCRArtifacts, CorruptOCRUnreadable,
		CorruptParsingFailed, CorruptPartialReference, CorruptUnrecognized:
		return true
	}
	return false
}

// FieldConfidence carries one trust score per structured field of a line.
// Scores are independent; callers combine them as they see fit.
type FieldConfidence struct {
	Reference   float64 `json:"reference"`
	Designation float64 `json:"designation"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// InvoiceLine is one extracted product line. Numeric fields are pointers:
// absence means "not extracted", which is distinct from zero.
type InvoiceLine struct {
	Reference   string   `json:"reference,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	UnitPriceHT *float64 `json:"unit_price_ht,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
	TotalHT     *float64 `json:"total_ht,omitempty"`
	VATRate     *float64 `json:"vat_rate,omitempty"`

	RawText          string           `json:"raw_text"`
	LineIndex        int              `json:"line_index"`
	Method           ExtractionMethod `json:"method"`
	Confidence       FieldConfidence  `json:"confidence"`
	NeedsReview      bool             `json:"needs_review,omitempty"`
	IsCorrupted      bool             `json:"is_corrupted,omitempty"`
	CorruptionReason CorruptionReason `json:"corruption_reason,omitempty"`
}

// HasMinimumData reports whether the line carries enough structure to be
// considered a successful extraction: an identity (designation or reference)
// plus at least one monetary/quantity fact.
func (l *InvoiceLine) HasMinimumData() bool {
	if l.Designation == "" && l.Reference == "" {
		return false
	}
	return l.Quantity != nil || l.UnitPriceHT != nil || l.TotalHT != nil
}

// EffectiveTotal returns the line total, computing quantity x price x (1 -
// discount) when no total was parsed. The second return is false when
// neither a parsed nor a computable total exists.
func (l *InvoiceLine) EffectiveTotal() (float64, bool) {
	if l.TotalHT != nil && *l.TotalHT > 0 {
		return *l.TotalHT, true
	}
	if l.Quantity != nil && l.UnitPriceHT != nil {
		total := *l.Quantity * *l.UnitPriceHT
		if l.Discount != nil {
			total *= 1 - *l.Discount/100
		}
		return total, true
	}
	return 0, false
}

// Float64Ptr returns a pointer to v. Convenience for building optional fields.
func Float64Ptr(v float64) *float64 { return &v }
