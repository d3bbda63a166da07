// Package contact recovers supplier identity from the header zone: name,
// decomposed postal address, phone and email. Every extractor returns a
// result with confidence 0 and empty value instead of an error when nothing
// usable is found.
package contact

import (
	"regexp"
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// Address strategy acceptance floors, in cascade order.
const (
	floorLabeled    = 0.7
	floorPositional = 0.5
	floorCityAnchor = 0.5
	floorDocSalvage = 0.5
	floorStreetWord = 0.4
)

// positionalWindow is how many lines below the supplier name are considered.
const positionalWindow = 5

// cityWalkWindow is how far above a city line candidates are collected.
const cityWalkWindow = 4

// numberedStreet matches a thoroughfare address led by a street number.
var numberedStreet = regexp.MustCompile(`^\d{1,4}\s*[, ]\s*\S|^\d{1,4}\s+\S`)

// addressStrategy produces a candidate or a zero-confidence result.
type addressStrategy struct {
	name  string
	floor float64
	run   func(e *Extractor, lines []string, nameIdx int) models.AddressResult
}

func addressStrategies() []addressStrategy {
	return []addressStrategy{
		{"labeled", floorLabeled, (*Extractor).addressFromLabel},
		{"positional", floorPositional, (*Extractor).addressFromPosition},
		{"city_anchor", floorCityAnchor, (*Extractor).addressFromCityAnchor},
		{"doc_salvage", floorDocSalvage, (*Extractor).addressFromDocumentLine},
		{"street_keyword", floorStreetWord, (*Extractor).addressFromStreetKeyword},
	}
}

// ExtractAddress runs the cascade and returns the first candidate whose
// confidence clears its strategy floor. nameIdx is the supplier-name line
// index, or -1 when unknown.
func (e *Extractor) ExtractAddress(header string, nameIdx int) models.AddressResult {
	lines := strings.Split(header, "\n")
	for _, st := range addressStrategies() {
		res := st.run(e, lines, nameIdx)
		if res.Confidence >= st.floor && (res.Street != "" || res.City != "") {
			res.Pattern = st.name
			res.Value = formatAddress(res)
			return res
		}
	}
	return models.AddressResult{}
}

// addressFromLabel looks for an explicit address label and collects the
// labelled line plus up to two continuation lines.
func (e *Extractor) addressFromLabel(lines []string, _ int) models.AddressResult {
	for i, line := range lines {
		m := e.loc.AddressLabelPattern.FindStringSubmatch(textutil.NormalizeKey(line))
		if m == nil {
			continue
		}
		// Recover the original-cased remainder after the label.
		value := originalTail(line, m[1])
		candidates := []string{value}
		for j := i + 1; j < len(lines) && j <= i+2; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || e.loc.IsStopLine(next) {
				break
			}
			candidates = append(candidates, next)
			if _, ok := locale.LookupCity(next); ok {
				break
			}
		}
		res := e.assemble(candidates)
		res.Confidence = 0.9
		return res
	}
	return models.AddressResult{}
}

// addressFromPosition collects the lines immediately below the supplier
// name, stopping at identifier or contact lines.
func (e *Extractor) addressFromPosition(lines []string, nameIdx int) models.AddressResult {
	if nameIdx < 0 || nameIdx >= len(lines) {
		return models.AddressResult{}
	}
	var candidates []string
	for i := nameIdx + 1; i < len(lines) && i <= nameIdx+positionalWindow; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if e.loc.IsStopLine(line) {
			break
		}
		candidates = append(candidates, line)
	}
	if len(candidates) == 0 {
		return models.AddressResult{}
	}
	res := e.assemble(candidates)
	switch {
	case res.City != "" && res.Street != "":
		res.Confidence = 0.8
	case res.City != "" || res.Street != "":
		res.Confidence = 0.6
	default:
		res.Confidence = 0.3
	}
	return res
}

// addressFromCityAnchor finds a gazetteer city line and walks upward
// collecting street and location candidates. Identifier lines stop the walk
// unless an address fragment can be salvaged from a document-number line.
func (e *Extractor) addressFromCityAnchor(lines []string, _ int) models.AddressResult {
	cityIdx := -1
	for i, line := range lines {
		if _, ok := locale.LookupCity(line); ok {
			cityIdx = i
			break
		}
	}
	if cityIdx < 0 {
		return models.AddressResult{}
	}

	cityLine := strings.TrimSpace(lines[cityIdx])
	if e.loc.IsDocumentLine(cityLine) {
		// "FACTURE N° : 12345 GALERIE MARCHANDE MARJANE, CASABLANCA":
		// usable only if an address tail survives past the number.
		frag, ok := e.salvageFromDocumentLine(cityLine)
		if !ok {
			return models.AddressResult{}
		}
		cityLine = frag
	}

	candidates := []string{cityLine}
	for i := cityIdx - 1; i >= 0 && i >= cityIdx-cityWalkWindow; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if e.loc.IsStopLine(line) {
			// A document-number line may still carry a usable tail:
			// "FACTURE N° : 12345 GALERIE MARCHANDE MARJANE".
			if frag, ok := e.salvageFromDocumentLine(line); ok {
				candidates = append([]string{frag}, candidates...)
			}
			break
		}
		if e.looksLikeName(line) {
			break
		}
		candidates = append([]string{line}, candidates...)
	}

	res := e.assemble(candidates)
	if res.City == "" {
		return models.AddressResult{}
	}
	if res.Street != "" {
		res.Confidence = 0.75
	} else {
		res.Confidence = 0.55
	}
	return res
}

// addressFromDocumentLine handles address text glued after a document
// number on the same physical line, validated by a city match on the same
// or the following line.
func (e *Extractor) addressFromDocumentLine(lines []string, _ int) models.AddressResult {
	for i, line := range lines {
		frag, ok := e.salvageFromDocumentLine(strings.TrimSpace(line))
		if !ok {
			continue
		}
		candidates := []string{frag}
		if _, hasCity := locale.LookupCity(frag); !hasCity {
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if _, ok := locale.LookupCity(next); ok && !e.loc.IsStopLine(next) {
					candidates = append(candidates, next)
				}
			}
		}
		res := e.assemble(candidates)
		if res.City == "" {
			continue
		}
		res.Confidence = 0.6
		return res
	}
	return models.AddressResult{}
}

// addressFromStreetKeyword is the last resort: any line carrying a street
// keyword.
func (e *Extractor) addressFromStreetKeyword(lines []string, _ int) models.AddressResult {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || e.loc.IsStopLine(trimmed) {
			continue
		}
		if e.loc.HasStreetKeyword(trimmed) {
			res := e.assemble([]string{trimmed})
			res.Confidence = 0.45
			return res
		}
	}
	return models.AddressResult{}
}

// salvageFromDocumentLine strips the document-number prefix off a line and
// returns the remaining address-looking tail.
func (e *Extractor) salvageFromDocumentLine(line string) (string, bool) {
	key := textutil.NormalizeKey(line)
	m := e.loc.DocNumberPattern.FindStringSubmatchIndex(key)
	if m == nil {
		return "", false
	}
	// Folded-key offsets shift on accented text, so locate the captured
	// number in the original line instead. Digits survive folding as-is.
	number := key[m[2]:m[3]]
	idx := strings.Index(line, number)
	if idx < 0 {
		return "", false
	}
	tail := strings.TrimSpace(line[idx+len(number):])
	tail = strings.TrimLeft(tail, " :,-")
	if len(tail) < 5 || !hasLetters(tail) {
		return "", false
	}
	return tail, true
}

// assemble dispatches candidate lines into the decomposed address fields.
// The rule: a numbered street always wins the street slot; named locations
// (galleries, centres, residences) take street only when no numbered street
// exists; leftovers become the secondary line.
func (e *Extractor) assemble(candidates []string) models.AddressResult {
	var res models.AddressResult
	var remaining []string

	for _, raw := range candidates {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		line = e.extractCityCountry(line, &res)
		if line == "" {
			continue
		}
		remaining = append(remaining, line)
	}

	var street, line2 []string
	numberedIdx := -1
	for i, line := range remaining {
		if numberedIdx < 0 && isNumberedStreet(line, e.loc) {
			numberedIdx = i
		}
	}
	switch {
	case numberedIdx >= 0:
		street = append(street, remaining[numberedIdx])
		for i, line := range remaining {
			if i != numberedIdx {
				line2 = append(line2, line)
			}
		}
	default:
		locIdx := -1
		for i, line := range remaining {
			if e.loc.HasLocationKeyword(line) {
				locIdx = i
				break
			}
		}
		if locIdx >= 0 {
			street = append(street, remaining[locIdx])
			for i, line := range remaining {
				if i != locIdx {
					line2 = append(line2, line)
				}
			}
		} else if len(remaining) > 0 {
			street = append(street, remaining[0])
			line2 = append(line2, remaining[1:]...)
		}
	}

	res.Street = strings.Join(street, ", ")
	res.StreetLine2 = strings.Join(line2, ", ")
	return res
}

// extractCityCountry pulls city, country and postal code out of a line and
// returns whatever text is left over.
func (e *Extractor) extractCityCountry(line string, res *models.AddressResult) string {
	if res.City == "" {
		if city, ok := locale.LookupCity(line); ok {
			res.City = city
			line = removeMention(line, city)
		}
	}
	if res.Country == "" {
		if country, ok := locale.LookupCountry(line); ok {
			res.Country = country
			line = removeMention(line, country)
		}
	}
	if res.PostalCode == "" {
		if pc, ok := locale.FindPostalCode(line); ok {
			res.PostalCode = pc
			line = strings.Replace(line, pc, "", 1)
		}
	}
	return strings.Trim(strings.TrimSpace(line), " ,-")
}

// removeMention deletes a matched name from the line, case- and
// accent-insensitively.
func removeMention(line, name string) string {
	key := textutil.NormalizeKey(line)
	target := textutil.NormalizeKey(name)
	idx := strings.Index(key, target)
	if idx < 0 {
		return line
	}
	// NormalizeKey only folds combining marks and case, so byte offsets can
	// shift on accented text; rescan the original for safety.
	if idx+len(target) <= len(line) &&
		textutil.NormalizeKey(line[idx:idx+len(target)]) == target {
		return strings.TrimSpace(line[:idx] + line[idx+len(target):])
	}
	return line
}

// isNumberedStreet recognizes "123 Boulevard Mohammed V" style lines.
func isNumberedStreet(line string, loc *locale.Locale) bool {
	return numberedStreet.MatchString(line) && loc.HasStreetKeyword(line)
}

// originalTail returns the original-cased substring of line matching the
// normalized tail.
func originalTail(line, normalizedTail string) string {
	normalizedTail = strings.TrimSpace(normalizedTail)
	if normalizedTail == "" {
		return ""
	}
	key := textutil.NormalizeKey(line)
	idx := strings.Index(key, normalizedTail)
	if idx < 0 || idx+len(normalizedTail) > len(line) {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[idx : idx+len(normalizedTail)])
}

// formatAddress renders the decomposed result back into one display string.
func formatAddress(res models.AddressResult) string {
	var parts []string
	for _, p := range []string{res.Street, res.StreetLine2, res.PostalCode, res.City, res.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func hasLetters(s string) bool {
	count := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
			count++
		}
	}
	return count >= 3
}
