package contact

import (
	"regexp"
	"strings"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// Phone tier confidences, highest first.
const (
	phoneConfLabeled = 0.9
	phoneConfLocale  = 0.75
	phoneConfIntl    = 0.6
	phoneConfGeneric = 0.5
)

var (
	intlPhone    = regexp.MustCompile(`\+\d{1,3}[ .-]?\d[ .\-0-9]{7,14}\d`)
	genericPhone = regexp.MustCompile(`\b0\d[ .\-0-9]{7,12}\d\b`)
	nonDigit     = regexp.MustCompile(`[^0-9+]`)
)

// ExtractPhone runs the tiered phone cascade over the header zone. Each
// tier must survive country validation before it is accepted.
func (e *Extractor) ExtractPhone(header string) models.PhoneResult {
	key := textutil.NormalizeKey(header)

	if m := e.loc.PhoneLabelPattern.FindStringSubmatch(key); m != nil {
		if res, ok := e.validate(m[1], phoneConfLabeled); ok {
			return res
		}
	}
	for _, re := range e.loc.PhonePatterns {
		if m := re.FindString(key); m != "" {
			if res, ok := e.validate(m, phoneConfLocale); ok {
				return res
			}
		}
	}
	if m := intlPhone.FindString(key); m != "" {
		if res, ok := e.validate(m, phoneConfIntl); ok {
			return res
		}
	}
	if m := genericPhone.FindString(key); m != "" {
		if res, ok := e.validate(m, phoneConfGeneric); ok {
			return res
		}
	}
	return models.PhoneResult{}
}

// validate normalizes the raw match, resolves its country, and checks it
// against that country's numbering plan.
func (e *Extractor) validate(raw string, confidence float64) (models.PhoneResult, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	country, national := resolveCountry(digits, e.loc.PreferredCountry)
	if !validNational(country, national) {
		return models.PhoneResult{}, false
	}
	return models.PhoneResult{
		Value:       formatNational(country, national),
		Confidence:  confidence,
		CountryCode: country,
		Valid:       true,
	}, true
}

// resolveCountry maps an international prefix to a country and strips it,
// returning the national form. Without a prefix the preferred country wins.
func resolveCountry(digits, preferred string) (string, string) {
	switch {
	case strings.HasPrefix(digits, "+212"):
		return "MA", "0" + strings.TrimPrefix(digits, "+212")
	case strings.HasPrefix(digits, "00212"):
		return "MA", "0" + strings.TrimPrefix(digits, "00212")
	case strings.HasPrefix(digits, "+33"):
		return "FR", "0" + strings.TrimPrefix(digits, "+33")
	case strings.HasPrefix(digits, "0033"):
		return "FR", "0" + strings.TrimPrefix(digits, "0033")
	case strings.HasPrefix(digits, "+"):
		return "INTL", strings.TrimPrefix(digits, "+")
	}
	return preferred, digits
}

// validNational checks a national number against the country's plan:
// Morocco 0[2/5/6/7/8] + 8 digits, France 0[1-9] + 8 digits, otherwise a
// 10-15 digit international number.
func validNational(country, n string) bool {
	switch country {
	case "MA":
		if len(n) != 10 || n[0] != '0' {
			return false
		}
		switch n[1] {
		case '2', '5', '6', '7', '8':
			return true
		}
		return false
	case "FR":
		return len(n) == 10 && n[0] == '0' && n[1] >= '1' && n[1] <= '9'
	default:
		return len(n) >= 10 && len(n) <= 15
	}
}

// formatNational renders the number in the familiar pair grouping for
// Morocco and France; other countries keep the bare digit run.
func formatNational(country, n string) string {
	if (country == "MA" || country == "FR") && len(n) == 10 {
		var parts []string
		for i := 0; i < len(n); i += 2 {
			parts = append(parts, n[i:i+2])
		}
		return strings.Join(parts, " ")
	}
	if country == "INTL" {
		return "+" + n
	}
	return n
}
