package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesTableHeader(t *testing.T) {
	fr := French()
	tests := []struct {
		name    string
		line    string
		matches bool
	}{
		{"classic columns", "DESIGNATION QTE PU REMISE MONTANT", true},
		{"ref designation", "REFERENCE DESIGNATION PU HT", true},
		{"accented", "Désignation Quantité Prix", true},
		{"product line", "197737121563 SAFILO 7A086 1 1010.00", false},
		{"plain prose", "Merci de votre visite", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, fr.MatchesTableHeader(tt.line))
		})
	}
}

func TestMatchesTotal(t *testing.T) {
	fr := French()
	assert.True(t, fr.MatchesTotal("TOTAL HT : 2 575,50"))
	assert.True(t, fr.MatchesTotal("Sous-total"))
	assert.True(t, fr.MatchesTotal("NET A PAYER : 3 090,60 DH"))
	assert.False(t, fr.MatchesTotal("LUNETTES TOTALEMENT NOIRES"))
}

func TestStopAndDocumentLines(t *testing.T) {
	fr := French()

	// Both classify as stop and document lines, never as addresses.
	for _, line := range []string{"FACTURE N° : 20250388", "ICE: 001234567000089"} {
		assert.True(t, fr.IsStopLine(line), "stop: %s", line)
		assert.True(t, fr.IsDocumentLine(line), "document: %s", line)
	}

	assert.False(t, fr.IsDocumentLine("123 Boulevard Mohammed V"))
	assert.False(t, fr.IsStopLine("GALERIE MARCHANDE MARJANE"))
}

func TestExtractIdentifiers(t *testing.T) {
	text := "ICE: 001234567000089\nRC : 45123 - CNSS: 1234567\nIF: 1234567"
	ids := ExtractIdentifiers(text)
	require.NotEmpty(t, ids)
	assert.Equal(t, "001234567000089", ids["ice"])
	assert.Equal(t, "45123", ids["rc"])
	assert.Equal(t, "1234567", ids["cnss"])
	assert.Equal(t, "1234567", ids["if"])
}

func TestIsIdentifierLine(t *testing.T) {
	assert.True(t, IsIdentifierLine("ICE: 001234567000089"))
	assert.True(t, IsIdentifierLine("Patente N° : 12345678"))
	assert.False(t, IsIdentifierLine("123 Boulevard Mohammed V"))
}

func TestLookupCity(t *testing.T) {
	tests := []struct {
		line string
		city string
		ok   bool
	}{
		{"CASABLANCA - MAROC", "Casablanca", true},
		{"20000 Casablanca", "Casablanca", true},
		{"Zone Industrielle EL JADIDA", "El Jadida", true},
		{"Oyonnax Cedex", "Oyonnax", true},
		{"GALERIE MARCHANDE", "", false},
	}
	for _, tt := range tests {
		city, ok := LookupCity(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.city, city, tt.line)
	}
}

func TestLookupCountry(t *testing.T) {
	c, ok := LookupCountry("CASABLANCA - MAROC")
	require.True(t, ok)
	assert.Equal(t, "Maroc", c)
	_, ok = LookupCountry("nowhere special")
	assert.False(t, ok)
}

func TestHasLocationKeyword(t *testing.T) {
	fr := French()
	assert.True(t, fr.HasLocationKeyword("GALERIE MARCHANDE MARJANE"))
	assert.True(t, fr.HasLocationKeyword("Résidence Yasmine, Imm B"))
	assert.False(t, fr.HasLocationKeyword("123 Boulevard Mohammed V"))
}

func TestHasStreetKeywordWordBoundaries(t *testing.T) {
	fr := French()
	assert.True(t, fr.HasStreetKeyword("123 Boulevard Mohammed V"))
	assert.True(t, fr.HasStreetKeyword("Av des FAR"))
	// "av" must not match inside another word.
	assert.False(t, fr.HasStreetKeyword("Travail soigné"))
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
base: fr
noise_keywords:
  - promotion speciale
preferred_country: FR
`)
	loc, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "FR", loc.PreferredCountry)
	assert.True(t, loc.MatchesNoise("PROMOTION SPECIALE -50%"))
	// Base keywords survive the extension.
	assert.True(t, loc.MatchesNoise("Conditions générales de vente"))
	// The built-in locale is untouched.
	assert.Equal(t, "MA", French().PreferredCountry)
}

func TestParseYAMLBadPattern(t *testing.T) {
	_, err := ParseYAML([]byte("total_pattern: '['"))
	require.Error(t, err)
}
