package contact

import (
	"regexp"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// Extractor runs the contact cascades against one locale's tables. It holds
// no per-document state and is safe for concurrent use.
type Extractor struct {
	loc *locale.Locale
}

// NewExtractor builds a contact extractor for the given locale.
func NewExtractor(loc *locale.Locale) *Extractor {
	if loc == nil {
		loc = locale.Default()
	}
	return &Extractor{loc: loc}
}

var emailPattern = regexp.MustCompile(`\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

// Extract runs every contact cascade over the header zone.
func (e *Extractor) Extract(header string) models.ContactResult {
	name, nameIdx := e.ExtractName(header)
	return models.ContactResult{
		SupplierName: name,
		Address:      e.ExtractAddress(header, nameIdx),
		Phone:        e.ExtractPhone(header),
		Email:        e.ExtractEmail(header),
	}
}

// ExtractEmail finds the first email address in the header zone. A labeled
// match ("Email: ...") carries more confidence than a bare one.
func (e *Extractor) ExtractEmail(header string) models.EmailResult {
	key := textutil.NormalizeKey(header)
	if m := e.loc.EmailLabelPattern.FindStringSubmatch(key); m != nil {
		return models.EmailResult{Value: m[1], Confidence: 0.9}
	}
	if m := emailPattern.FindString(key); m != "" {
		return models.EmailResult{Value: m, Confidence: 0.7}
	}
	return models.EmailResult{}
}
