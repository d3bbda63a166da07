package locale

import (
	"regexp"
	"strings"

	"github.com/facto-ocr/facto/internal/textutil"
)

// cities maps the normalized city name to its canonical casing. Moroccan
// cities first, then the French ones that show up on optical-trade invoices.
var cities = map[string]string{
	"casablanca":  "Casablanca",
	"casa":        "Casablanca",
	"rabat":       "Rabat",
	"marrakech":   "Marrakech",
	"fes":         "Fès",
	"tanger":      "Tanger",
	"agadir":      "Agadir",
	"meknes":      "Meknès",
	"oujda":       "Oujda",
	"kenitra":     "Kénitra",
	"tetouan":     "Tétouan",
	"sale":        "Salé",
	"temara":      "Témara",
	"mohammedia":  "Mohammedia",
	"el jadida":   "El Jadida",
	"beni mellal": "Béni Mellal",
	"nador":       "Nador",
	"khouribga":   "Khouribga",
	"settat":      "Settat",
	"berrechid":   "Berrechid",
	"laayoune":    "Laâyoune",
	"essaouira":   "Essaouira",
	"ouarzazate":  "Ouarzazate",
	"paris":       "Paris",
	"lyon":        "Lyon",
	"marseille":   "Marseille",
	"toulouse":    "Toulouse",
	"bordeaux":    "Bordeaux",
	"lille":       "Lille",
	"nantes":      "Nantes",
	"strasbourg":  "Strasbourg",
	"oyonnax":     "Oyonnax",
}

// countries maps normalized country mentions to canonical names.
var countries = map[string]string{
	"maroc":   "Maroc",
	"morocco": "Maroc",
	"france":  "France",
	"espagne": "Espagne",
	"spain":   "Espagne",
	"italie":  "Italie",
	"italy":   "Italie",
}

// PostalCodePattern matches Moroccan and French 5-digit postal codes.
var PostalCodePattern = regexp.MustCompile(`\b\d{5}\b`)

// LookupCity scans a line for a gazetteer city and returns its canonical
// name. Longer names are preferred so "el jadida" is not shadowed by a
// partial match.
func LookupCity(line string) (string, bool) {
	key := textutil.NormalizeKey(line)
	best := ""
	for name := range cities {
		if containsWord(key, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return "", false
	}
	return cities[best], true
}

// LookupCountry scans a line for a known country mention.
func LookupCountry(line string) (string, bool) {
	key := textutil.NormalizeKey(line)
	for name, canonical := range countries {
		if containsWord(key, name) {
			return canonical, true
		}
	}
	return "", false
}

// FindPostalCode returns the first postal-code-shaped token of a line,
// skipping tokens that are part of an amount or a longer digit run.
func FindPostalCode(line string) (string, bool) {
	for _, tok := range strings.Fields(line) {
		if len(tok) == 5 && textutil.IsNumericToken(tok) {
			return tok, true
		}
	}
	return "", false
}
