package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/testutil"
)

var sampleInvoice = testutil.FullInvoice()

func buildTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewBuilder().Build()
	require.NoError(t, err)
	return p
}

func TestProcessFullInvoice(t *testing.T) {
	p := buildTestPipeline(t)

	doc, err := p.Process(sampleInvoice)
	require.NoError(t, err)

	require.Len(t, doc.Lines, 3)
	for _, l := range doc.Lines {
		assert.True(t, l.HasMinimumData(), "line %q", l.RawText)
		assert.False(t, l.IsCorrupted, "line %q", l.RawText)
		total, ok := l.EffectiveTotal()
		require.True(t, ok)
		assert.InDelta(t, 858.50, total, 0.001)
	}

	assert.Equal(t, "OPTICA VISION SARL", doc.Contact.SupplierName.Value)
	assert.Equal(t, "123 Boulevard Mohammed V", doc.Contact.Address.Street)
	assert.Equal(t, "Casablanca", doc.Contact.Address.City)
	assert.Equal(t, "05 22 44 55 66", doc.Contact.Phone.Value)

	require.NotNil(t, doc.Entities.Vendor)
	assert.Equal(t, "001234567000089", doc.Entities.Identifiers["ice"])

	assert.True(t, doc.Validation.IsValid)
	require.NotNil(t, doc.Validation.ReportedTotal)
	assert.InDelta(t, 2575.50, *doc.Validation.ReportedTotal, 0.001)
	assert.InDelta(t, 2575.50, doc.Validation.ComputedTotal, 0.001)

	assert.Equal(t, 3, doc.Stats.CandidateLines)
	assert.Equal(t, 3, doc.Stats.ExtractedLines)
}

func TestProcessColumnHeaderRowIsNotALine(t *testing.T) {
	p := buildTestPipeline(t)

	doc, err := p.Process(sampleInvoice)
	require.NoError(t, err)
	for _, l := range doc.Lines {
		assert.NotContains(t, l.RawText, "Designation Qte")
	}
}

func TestProcessKeepsColumnStructure(t *testing.T) {
	p := buildTestPipeline(t)

	// The dual-column header split and the columnar score criterion both
	// read runs of spaces, so cleaning must not collapse them.
	text := "OPTICA VISION SARL          LUNETTERIE DU CENTRE\n" +
		"ICE: 001234567000089          45 AVENUE HASSAN II, AGADIR\n" +
		"\n" +
		"Reference  Designation  Qte  PU  Montant\n" +
		"Verres unifocaux  2  425.00\n" +
		"Total HT 425.00"

	doc, err := p.Process(text)
	require.NoError(t, err)

	require.NotNil(t, doc.Entities.Vendor)
	assert.Equal(t, models.SourceLeftColumn, doc.Entities.Vendor.Source)
	assert.Contains(t, doc.Entities.Vendor.Text, "OPTICA VISION SARL")

	require.NotNil(t, doc.Entities.Customer)
	assert.Equal(t, models.SourceRightColumn, doc.Entities.Customer.Source)
	assert.Contains(t, doc.Entities.Customer.Text, "LUNETTERIE DU CENTRE")
	assert.Contains(t, doc.Entities.Customer.Text, "45 AVENUE HASSAN II, AGADIR")

	// Without the column gaps the item line scores below the threshold.
	require.Len(t, doc.Lines, 1)
	assert.Contains(t, doc.Lines[0].RawText, "Verres unifocaux")
}

func TestProcessReportsShortfall(t *testing.T) {
	p := buildTestPipeline(t)

	text := "OPTICA VISION SARL\n" +
		"Reference Designation Qte PU Montant\n" +
		"197737121563 SAFILO 7A086 54.19 GREY 1 1010.00 15% 858.50\n" +
		"Total HT 2600.00"

	doc, err := p.Process(text)
	require.NoError(t, err)

	assert.False(t, doc.Validation.IsValid)
	assert.GreaterOrEqual(t, doc.Validation.MissingLineEst, 1)
}

func TestProcessEmptyDocument(t *testing.T) {
	p := buildTestPipeline(t)

	_, err := p.Process("   \n\n  ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestBuilderRejectsBadVATRate(t *testing.T) {
	_, err := NewBuilder().WithDefaultVATRate(150).Build()
	assert.Error(t, err)
}

func TestBuilderOptions(t *testing.T) {
	p, err := NewBuilder().
		WithLocale("en").
		WithThreshold(5).
		WithDefaultVATRate(0).
		WithTolerances(0.02, 2).
		WithAvgLineValue(100).
		Build()
	require.NoError(t, err)

	cfg := p.Config()
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 5, cfg.ScoreThreshold)
	assert.Zero(t, cfg.DefaultVATRate)
	assert.InDelta(t, 0.02, cfg.RelTolerance, 0.0001)
}

type countingCallback struct {
	mu       sync.Mutex
	started  int
	progress int
	complete int
	errors   []int
}

func (c *countingCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = total
}

func (c *countingCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress++
}

func (c *countingCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.complete++
}

func (c *countingCallback) OnError(index int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, index)
}

func TestProcessBatch(t *testing.T) {
	p := buildTestPipeline(t)

	texts := []string{sampleInvoice, sampleInvoice, sampleInvoice, sampleInvoice}
	cb := &countingCallback{}
	docs, err := p.ProcessBatch(texts, BatchConfig{MaxWorkers: 2, ProgressCallback: cb})
	require.NoError(t, err)

	require.Len(t, docs, 4)
	for i, doc := range docs {
		require.NotNil(t, doc, "document %d", i)
		assert.Len(t, doc.Lines, 3)
	}
	assert.Equal(t, 4, cb.started)
	assert.Equal(t, 4, cb.progress)
	assert.Equal(t, 1, cb.complete)
	assert.Empty(t, cb.errors)
}

func TestProcessBatchKeepsGoingOnFailure(t *testing.T) {
	p := buildTestPipeline(t)

	texts := []string{sampleInvoice, "", sampleInvoice}
	cb := &countingCallback{}
	var handled []int
	docs, err := p.ProcessBatch(texts, BatchConfig{
		MaxWorkers:       2,
		ProgressCallback: cb,
		ErrorHandler:     func(i int, err error) { handled = append(handled, i) },
	})
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.NotNil(t, docs[0])
	assert.Nil(t, docs[1])
	assert.NotNil(t, docs[2])
	assert.Equal(t, []int{1}, cb.errors)
	assert.Equal(t, []int{1}, handled)
}

func TestProcessBatchEmptyInput(t *testing.T) {
	p := buildTestPipeline(t)

	_, err := p.ProcessBatch(nil, DefaultBatchConfig())
	assert.Error(t, err)
}

func TestProcessBatchCancelled(t *testing.T) {
	p := buildTestPipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessBatchContext(ctx, []string{sampleInvoice, sampleInvoice}, DefaultBatchConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
