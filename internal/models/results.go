package models

// DocumentZones holds the structural split of a document into header, table
// and footer regions. Boundaries are line indices into the cleaned document;
// Text slices are the corresponding raw text. Header and table may overlap
// slightly; table and footer never do.
type DocumentZones struct {
	HeaderStart int    `json:"header_start"`
	HeaderEnd   int    `json:"header_end"` // exclusive
	TableStart  int    `json:"table_start"`
	TableEnd    int    `json:"table_end"` // exclusive
	FooterStart int    `json:"footer_start"`
	FooterEnd   int    `json:"footer_end"` // exclusive
	HeaderText  string `json:"header_text"`
	TableText   string `json:"table_text"`
	FooterText  string `json:"footer_text"`
}

// LineScore is the scoring verdict for one candidate line.
type LineScore struct {
	Text     string   `json:"text"`
	Index    int      `json:"index"`
	Score    int      `json:"score"`
	Criteria []string `json:"criteria,omitempty"`
}

// IsProductLine reports whether the score clears the product threshold.
func (s LineScore) IsProductLine(threshold int) bool { return s.Score >= threshold }

// MergeResult is the outcome of fragment repair over the table zone.
type MergeResult struct {
	Lines      []string `json:"lines"`
	MergeCount int      `json:"merge_count"`
}

// MultiLineGroup records physical lines judged to form one logical record.
type MultiLineGroup struct {
	Indices    []int   `json:"indices"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// AddressResult is a decomposed postal address with extraction provenance.
type AddressResult struct {
	Value       string  `json:"value,omitempty"`
	Confidence  float64 `json:"confidence"`
	Pattern     string  `json:"pattern,omitempty"`
	Street      string  `json:"street,omitempty"`
	StreetLine2 string  `json:"street_line2,omitempty"`
	City        string  `json:"city,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	Country     string  `json:"country,omitempty"`
}

// PhoneResult is an extracted, country-validated phone number.
type PhoneResult struct {
	Value       string  `json:"value,omitempty"`
	Confidence  float64 `json:"confidence"`
	CountryCode string  `json:"country_code,omitempty"`
	Valid       bool    `json:"valid"`
}

// EmailResult is an extracted email address.
type EmailResult struct {
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence"`
}

// NameResult is an extracted supplier or customer name.
type NameResult struct {
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence"`
	Pattern    string  `json:"pattern,omitempty"`
}

// ContactResult aggregates everything recovered from the header zone.
type ContactResult struct {
	SupplierName NameResult    `json:"supplier_name"`
	Address      AddressResult `json:"address"`
	Phone        PhoneResult   `json:"phone"`
	Email        EmailResult   `json:"email"`
}

// BlockSource tells how an entity block was attributed.
type BlockSource string

const (
	SourceExplicitLabel BlockSource = "explicit_label"
	SourceLeftColumn    BlockSource = "left_column"
	SourceRightColumn   BlockSource = "right_column"
	SourceFooter        BlockSource = "footer"
	SourceInferred      BlockSource = "inferred"
)

// EntityBlock is a contiguous text region attributed to vendor or customer.
type EntityBlock struct {
	Text       string      `json:"text"`
	Source     BlockSource `json:"source"`
	Confidence float64     `json:"confidence"`
}

// EntityZones is the vendor/customer separation of a header zone, plus the
// vendor identifiers anchored from the footer.
type EntityZones struct {
	Vendor       *EntityBlock      `json:"vendor,omitempty"`
	Customer     *EntityBlock      `json:"customer,omitempty"`
	Identifiers  map[string]string `json:"identifiers,omitempty"`
	CustomerCode string            `json:"customer_code,omitempty"`
}

// SuggestionKind classifies a validation suggestion.
type SuggestionKind string

const (
	SuggestMissingLines   SuggestionKind = "missing_lines"
	SuggestOutlierLine    SuggestionKind = "outlier_line"
	SuggestInconsistent   SuggestionKind = "inconsistent_total"
	SuggestTotalsMismatch SuggestionKind = "totals_mismatch"
)

// Suggestion is one structured hint from the totals validator.
type Suggestion struct {
	Kind           SuggestionKind `json:"kind"`
	Message        string         `json:"message"`
	LineIndex      *int           `json:"line_index,omitempty"`
	SuggestedValue *float64       `json:"suggested_value,omitempty"`
}

// ValidationReport cross-checks extracted lines against document totals.
// It annotates, never blocks; callers decide what to do with IsValid.
type ValidationReport struct {
	IsValid        bool         `json:"is_valid"`
	ComputedTotal  float64      `json:"computed_total"`
	ReportedTotal  *float64     `json:"reported_total,omitempty"`
	Difference     float64      `json:"difference"`
	MissingLineEst int          `json:"missing_line_estimate"`
	Warnings       []string     `json:"warnings,omitempty"`
	Suggestions    []Suggestion `json:"suggestions,omitempty"`
}

// ExtractionStats summarizes the line extraction pass.
type ExtractionStats struct {
	CandidateLines int `json:"candidate_lines"`
	ExtractedLines int `json:"extracted_lines"`
	CorruptedLines int `json:"corrupted_lines"`
	ReviewLines    int `json:"review_lines"`
	MergedLines    int `json:"merged_lines"`
}

// Document is the full per-document extraction result.
type Document struct {
	Zones      DocumentZones    `json:"zones"`
	Lines      []InvoiceLine    `json:"lines"`
	Contact    ContactResult    `json:"contact"`
	Entities   EntityZones      `json:"entities"`
	Validation ValidationReport `json:"validation"`
	Stats      ExtractionStats  `json:"stats"`
}
