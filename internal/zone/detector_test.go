package zone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facto-ocr/facto/internal/locale"
)

const sampleInvoice = `OPTICA VISION SARL
123 Boulevard Mohammed V
CASABLANCA - MAROC
FACTURE N° : 20250388
REFERENCE DESIGNATION QTE PU MONTANT
197737121563 SAFILO 7A086 1 1010.00 858.50
197737121570 CARRERA 8859 2 450.00 900.00
SOUS-TOTAL : 1758.50
TVA 20% : 351.70
TOTAL TTC : 2110.20`

func TestDetectZones(t *testing.T) {
	d := NewDetector(locale.French())
	z := d.Detect(sampleInvoice)

	// The column-label row opens the table zone.
	assert.Equal(t, 4, z.TableStart)
	assert.Equal(t, 4, z.HeaderEnd)
	assert.Contains(t, z.HeaderText, "OPTICA VISION SARL")
	assert.Contains(t, z.HeaderText, "FACTURE N° : 20250388")
	assert.NotContains(t, z.HeaderText, "SAFILO")

	// The totals block opens the footer zone.
	assert.Equal(t, 7, z.FooterStart)
	assert.Contains(t, z.FooterText, "SOUS-TOTAL")
	assert.Contains(t, z.TableText, "SAFILO")
	assert.NotContains(t, z.TableText, "SOUS-TOTAL")

	// Table and footer never overlap.
	assert.Equal(t, z.TableEnd, z.FooterStart)
}

func TestDetectTableStartByBarcode(t *testing.T) {
	// No column labels: the first barcode+amount row anchors the table.
	text := `OPTIQUE ATLAS
Angle Rue du Caire
197737121563 SAFILO 7A086 1 1010.00 858.50
TOTAL : 858.50`
	d := NewDetector(locale.French())
	z := d.Detect(text)
	assert.Equal(t, 2, z.TableStart)
	assert.Equal(t, 3, z.FooterStart)
}

func TestDetectFallbackZones(t *testing.T) {
	// No table cues at all: first and last 15% of lines are header/footer.
	var lines []string
	for range 20 {
		lines = append(lines, "du texte sans structure particuliere")
	}
	d := NewDetector(locale.French())
	z := d.Detect(strings.Join(lines, "\n"))

	assert.Equal(t, 3, z.HeaderEnd)
	assert.Equal(t, 3, z.TableStart)
	assert.Equal(t, 17, z.FooterStart)
	assert.Equal(t, 20, z.FooterEnd)
}

func TestDetectFooterByAmountFreeRun(t *testing.T) {
	text := `DESIGNATION QTE PU MONTANT
197737121563 SAFILO 7A086 1 1010.00 858.50
Conditions particulieres applicables
Livraison sous quinzaine
Garantie constructeur deux ans
TOTAL TTC : 858.50`
	d := NewDetector(locale.French())
	z := d.Detect(text)
	// The amount-free run above the total opens the footer.
	assert.Equal(t, 2, z.FooterStart)
}

func TestTableLines(t *testing.T) {
	d := NewDetector(locale.French())
	lines := d.TableLines(sampleInvoice)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "SAFILO")
}

func TestSplitTableLines(t *testing.T) {
	lines := SplitTableLines("a\n\n  b  \n\nc")
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

func TestDetectEmptyDocument(t *testing.T) {
	d := NewDetector(nil)
	z := d.Detect("")
	assert.Empty(t, strings.TrimSpace(z.TableText))
	assert.Empty(t, SplitTableLines(z.TableText))
}
