package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/testutil"
)

func writeTestInvoice(t *testing.T) string {
	t.Helper()
	return testutil.WriteInvoiceFile(t, testutil.MinimalInvoice())
}

func TestExtractCommandJSON(t *testing.T) {
	path := writeTestInvoice(t)

	output, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"extract", path, "--format", "json"})
	require.NoError(t, err)

	var doc models.Document
	require.NoError(t, json.Unmarshal([]byte(output), &doc))
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "RB-3025", doc.Lines[0].Reference)
	assert.True(t, doc.Validation.IsValid)
}

func TestExtractCommandTextFormat(t *testing.T) {
	path := writeTestInvoice(t)

	output, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"extract", path, "--format", "text"})
	require.NoError(t, err)

	assert.Contains(t, output, "OPTICA VISION")
	assert.Contains(t, output, "Lines (1):")
	assert.Contains(t, output, "Validation: OK")
}

func TestExtractCommandOutputFile(t *testing.T) {
	path := writeTestInvoice(t)
	outFile := filepath.Join(t.TempDir(), "result.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"extract", path, "--format", "json", "--output", outFile})
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var doc models.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Lines, 1)
}

func TestExtractCommandMissingFile(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"extract", filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	path := writeTestInvoice(t)
	path2 := testutil.WriteInvoiceFile(t, testutil.FullInvoice())

	output, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"batch", path, path2, "--format", "json", "--pretty=false"})
	require.NoError(t, err)

	var docs []*models.Document
	require.NoError(t, json.Unmarshal([]byte(output), &docs))
	require.Len(t, docs, 2)
	assert.NotNil(t, docs[0])
	assert.NotNil(t, docs[1])
}
