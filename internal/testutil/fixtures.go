// Package testutil provides shared invoice text fixtures for tests that
// exercise the whole extraction path rather than a single stage.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MinimalInvoice is a one-line invoice whose reported total matches the
// extracted line exactly.
func MinimalInvoice() string {
	return "OPTICA VISION SARL\n" +
		"123 Boulevard Mohammed V\n" +
		"CASABLANCA - MAROC\n" +
		"FACTURE N° : 20250388\n" +
		"Reference Designation Qte PU Montant\n" +
		"RB-3025 AVIATOR CLASSIC 1 858.50 858.50\n" +
		"\n" +
		"Total HT 858.50\n" +
		"ICE: 001234567000089"
}

// FullInvoice is a three-line optical invoice with barcode references,
// discounts, contact details and fiscal identifiers.
func FullInvoice() string {
	return "OPTICA VISION SARL\n" +
		"GALERIE MARCHANDE MARJANE\n" +
		"123 Boulevard Mohammed V\n" +
		"CASABLANCA - MAROC\n" +
		"Tel: 05 22 44 55 66\n" +
		"FACTURE N° : 20250388\n" +
		"Reference Designation Qte PU Montant\n" +
		"197737121563 SAFILO 7A086 54.19 GREY 1 1010.00 15% 858.50\n" +
		"RB-3025 AVIATOR CLASSIC 1 858.50 858.50\n" +
		"197737121563 SAFILO 7A086 54.19 BLACK 1 1010.00 15% 858.50\n" +
		"\n" +
		"Total HT 2575.50\n" +
		"ICE: 001234567000089"
}

// WriteInvoiceFile writes an invoice fixture into a temp directory and
// returns its path.
func WriteInvoiceFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}
