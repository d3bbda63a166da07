// Package locale holds the per-language pattern tables the extraction
// pipeline matches against: field labels, stop words, noise keywords, the
// city gazetteer and the Moroccan identifier patterns. Tables are built once
// and never mutated afterwards; a *Locale is safe to share across
// concurrent extractions.
package locale

import (
	"regexp"
	"strings"

	"github.com/facto-ocr/facto/internal/textutil"
)

// Locale is an immutable bundle of compiled patterns for one language.
// All regular expressions are matched against accent-folded, lowercased
// text (textutil.NormalizeKey).
type Locale struct {
	Name string

	MonthNames []string

	// Zone detection.
	TableHeaderPattern *regexp.Regexp
	TotalPattern       *regexp.Regexp
	HeaderMetaPattern  *regexp.Regexp

	// Line scoring.
	NoiseKeywords []string

	// Contact extraction.
	AddressLabelPattern  *regexp.Regexp
	PhoneLabelPattern    *regexp.Regexp
	EmailLabelPattern    *regexp.Regexp
	VendorLabelPattern   *regexp.Regexp
	CustomerLabelPattern *regexp.Regexp
	CustomerCodePattern  *regexp.Regexp
	DocNumberPattern     *regexp.Regexp
	DatePattern          *regexp.Regexp
	LegalFormPattern     *regexp.Regexp

	StreetKeywords   []string
	LocationKeywords []string
	StopWords        []string

	// Labeled phone patterns tried before the generic tiers.
	PhonePatterns []*regexp.Regexp

	// PreferredCountry drives phone validation when no prefix is present.
	PreferredCountry string
}

// French returns the French/Moroccan trade-document locale, the default for
// this pipeline.
func French() *Locale {
	return &Locale{
		Name: "fr",
		MonthNames: []string{
			"janvier", "fevrier", "mars", "avril", "mai", "juin",
			"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
		},
		TableHeaderPattern: regexp.MustCompile(
			`(?:designation|libelle|article).*(?:qte|quantite|prix|montant|p\.?u)` +
				`|(?:qte|quantite).*(?:prix|montant|p\.?u)` +
				`|(?:reference|ref\.?).*designation`),
		TotalPattern: regexp.MustCompile(
			`\b(?:total(?:\s+(?:ht|ttc|general))?|sous[- ]total|montant\s+(?:total|ht|ttc)|` +
				`net\s+a\s+payer|a\s+payer|arrete(?:e)?\s+la\s+presente)\b`),
		HeaderMetaPattern: regexp.MustCompile(
			`\b(?:facture|avoir|devis|bon\s+de\s+(?:livraison|commande)|date|echeance|` +
				`client|fournisseur|page|tel(?:ephone)?|fax|email|e-mail|ice|patente|` +
				`r\.?c\.?|cnss|i\.?f\.?|tva|capital|siege)\b`),
		NoiseKeywords: []string{
			"conditions generales", "merci de votre confiance", "signature",
			"cachet", "mode de reglement", "reglement", "echeance",
			"valable jusqu", "sous reserve", "penalite", "www.", "http",
		},
		AddressLabelPattern: regexp.MustCompile(
			`(?:adresse|siege\s+social|domicilie\s+a?|situe\s+a?)\s*:?\s*(.+)`),
		PhoneLabelPattern: regexp.MustCompile(
			`(?:tel(?:ephone)?|gsm|portable|mobile|fixe)\s*\.?\s*:?\s*([+0-9][0-9 ./-]{7,})`),
		EmailLabelPattern: regexp.MustCompile(
			`(?:email|e-mail|mail|courriel)\s*:?\s*([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`),
		VendorLabelPattern: regexp.MustCompile(
			`^(?:fournisseur|vendeur|emetteur|de)\s*:\s*(.*)`),
		CustomerLabelPattern: regexp.MustCompile(
			`^(?:facture\s+a|facturer\s+a|client|destinataire|livre\s+a|bill\s+to|ship\s+to)\s*:?\s*(.*)`),
		CustomerCodePattern: regexp.MustCompile(
			`(?:code\s+client|n°?\s*client|ref\.?\s+client)\s*:?\s*([a-z0-9-]+)`),
		DocNumberPattern: regexp.MustCompile(
			`\b(?:facture|avoir|devis|bl|bc|commande)\s*(?:n°?|num(?:ero)?)?\s*:?\s*(\d{3,})`),
		DatePattern: regexp.MustCompile(
			`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b|\b\d{1,2}\s+(?:janvier|fevrier|mars|avril|mai|juin|juillet|aout|septembre|octobre|novembre|decembre)\s+\d{4}\b`),
		LegalFormPattern: regexp.MustCompile(
			`\b(?:sarl(?:\s+au)?|s\.a\.r\.l|sa|s\.a|sas|snc|sasu|eurl|ste|societe)\b`),
		StreetKeywords: []string{
			"rue", "avenue", "av", "boulevard", "bd", "route", "rte",
			"lotissement", "lot", "angle", "place", "allee", "chemin", "km",
		},
		LocationKeywords: []string{
			"galerie", "centre commercial", "zone industrielle", "residence",
			"immeuble", "imm", "quartier", "technopark", "twin center",
			"espace", "complexe",
		},
		StopWords: []string{
			"facture", "avoir", "devis", "date", "page", "total", "tva",
			"ice", "patente", "cnss", "telephone", "tel", "fax", "email",
		},
		PhonePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\b0[25678](?:[ .-]?\d{2}){4}\b`),
			regexp.MustCompile(`\+212[ .-]?[25678](?:[ .-]?\d{2}){4}\b`),
		},
		PreferredCountry: "MA",
	}
}

// English returns the English-language tables. Same structure as French;
// only the label vocabulary differs.
func English() *Locale {
	return &Locale{
		Name: "en",
		MonthNames: []string{
			"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december",
		},
		TableHeaderPattern: regexp.MustCompile(
			`(?:description|item).*(?:qty|quantity|price|amount)|(?:qty|quantity).*(?:price|amount)`),
		TotalPattern: regexp.MustCompile(
			`\b(?:total(?:\s+(?:due|amount))?|subtotal|sub-total|balance\s+due|amount\s+due)\b`),
		HeaderMetaPattern: regexp.MustCompile(
			`\b(?:invoice|credit\s+note|quote|delivery\s+note|date|due|customer|supplier|page|phone|fax|email|vat|tax\s+id)\b`),
		NoiseKeywords: []string{
			"terms and conditions", "thank you for your business",
			"signature", "payment terms", "www.", "http",
		},
		AddressLabelPattern: regexp.MustCompile(
			`(?:address|registered\s+office)\s*:?\s*(.+)`),
		PhoneLabelPattern: regexp.MustCompile(
			`(?:phone|tel|mobile|cell)\s*\.?\s*:?\s*([+0-9][0-9 ./-]{7,})`),
		EmailLabelPattern: regexp.MustCompile(
			`(?:email|e-mail|mail)\s*:?\s*([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`),
		VendorLabelPattern: regexp.MustCompile(
			`^(?:supplier|vendor|seller|from)\s*:\s*(.*)`),
		CustomerLabelPattern: regexp.MustCompile(
			`^(?:bill\s+to|ship\s+to|invoice\s+to|sold\s+to|customer)\s*:?\s*(.*)`),
		CustomerCodePattern: regexp.MustCompile(
			`(?:customer\s+(?:code|no|number)|account\s+no)\s*\.?\s*:?\s*([a-z0-9-]+)`),
		DocNumberPattern: regexp.MustCompile(
			`\b(?:invoice|credit\s+note|order)\s*(?:no|number|#)?\s*\.?\s*:?\s*(\d{3,})`),
		DatePattern: regexp.MustCompile(
			`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b|\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
		LegalFormPattern: regexp.MustCompile(`\b(?:ltd|llc|inc|plc|corp|co\.)\b`),
		StreetKeywords: []string{
			"street", "st", "avenue", "ave", "road", "rd", "boulevard",
			"blvd", "lane", "drive", "suite",
		},
		LocationKeywords: []string{
			"mall", "shopping center", "industrial zone", "business park",
			"building", "tower", "plaza",
		},
		StopWords: []string{
			"invoice", "date", "page", "total", "vat", "phone", "fax", "email",
		},
		PhonePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\b0[1-9](?:[ .-]?\d{2}){4}\b`),
		},
		PreferredCountry: "FR",
	}
}

// Default returns the locale used when a caller supplies none.
func Default() *Locale { return French() }

// ByName resolves "fr" or "en"; unknown names fall back to the default.
func ByName(name string) *Locale {
	switch name {
	case "en":
		return English()
	default:
		return French()
	}
}

// MatchesTableHeader reports whether the line looks like the column-label
// row of the product table.
func (l *Locale) MatchesTableHeader(line string) bool {
	return l.TableHeaderPattern.MatchString(textutil.NormalizeKey(line))
}

// MatchesTotal reports whether the line carries a total/subtotal keyword.
func (l *Locale) MatchesTotal(line string) bool {
	return l.TotalPattern.MatchString(textutil.NormalizeKey(line))
}

// MatchesHeaderMeta reports whether the line carries header/metadata
// vocabulary (document type, dates, contact labels, identifiers).
func (l *Locale) MatchesHeaderMeta(line string) bool {
	return l.HeaderMetaPattern.MatchString(textutil.NormalizeKey(line))
}

// MatchesNoise reports whether the line contains a configured noise keyword.
func (l *Locale) MatchesNoise(line string) bool {
	key := textutil.NormalizeKey(line)
	for _, kw := range l.NoiseKeywords {
		if kw != "" && containsWord(key, kw) {
			return true
		}
	}
	return false
}

// HasStreetKeyword reports whether the line mentions a thoroughfare word.
func (l *Locale) HasStreetKeyword(line string) bool {
	key := textutil.NormalizeKey(line)
	for _, kw := range l.StreetKeywords {
		if containsWord(key, kw) {
			return true
		}
	}
	return false
}

// HasLocationKeyword reports whether the line names a known location kind
// (gallery, commercial center, residence, ...).
func (l *Locale) HasLocationKeyword(line string) bool {
	key := textutil.NormalizeKey(line)
	for _, kw := range l.LocationKeywords {
		if containsWord(key, kw) {
			return true
		}
	}
	return false
}

// IsDateLine reports whether the line is dominated by a date.
func (l *Locale) IsDateLine(line string) bool {
	return l.DatePattern.MatchString(textutil.NormalizeKey(line))
}

// IsDocumentLine reports whether the line carries a document number or a
// business identifier. Such lines anchor zones but are never addresses.
func (l *Locale) IsDocumentLine(line string) bool {
	key := textutil.NormalizeKey(line)
	return l.DocNumberPattern.MatchString(key) || IsIdentifierLine(line)
}

// IsStopLine reports whether the line terminates an address/entity block:
// identifiers, document numbers, dates and contact labels all stop
// collection.
func (l *Locale) IsStopLine(line string) bool {
	key := textutil.NormalizeKey(line)
	if IsIdentifierLine(line) || l.DocNumberPattern.MatchString(key) {
		return true
	}
	if l.PhoneLabelPattern.MatchString(key) || l.EmailLabelPattern.MatchString(key) {
		return true
	}
	return l.IsDateLine(line)
}

// containsWord reports whether key contains kw delimited by non-letters, so
// "av" does not match inside "travail".
func containsWord(key, kw string) bool {
	for from := 0; from <= len(key)-len(kw); {
		i := strings.Index(key[from:], kw)
		if i < 0 {
			return false
		}
		i += from
		beforeOK := i == 0 || !isWordByte(key[i-1])
		after := i + len(kw)
		afterOK := after >= len(key) || !isWordByte(key[after])
		if beforeOK && afterOK {
			return true
		}
		from = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
