// Package pipeline assembles the extraction stages into one per-document
// run: zone detection, fragment and multi-line repair, line scoring, the
// line-item cascade, contact and entity extraction, and totals validation.
// A Pipeline holds only immutable configuration and shared read-only
// pattern tables, so one instance serves concurrent documents.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/facto-ocr/facto/internal/contact"
	"github.com/facto-ocr/facto/internal/entity"
	"github.com/facto-ocr/facto/internal/lineitem"
	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/merge"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/score"
	"github.com/facto-ocr/facto/internal/textutil"
	"github.com/facto-ocr/facto/internal/validate"
	"github.com/facto-ocr/facto/internal/zone"
)

// ErrEmptyDocument is returned when the input text is blank after cleaning.
var ErrEmptyDocument = errors.New("pipeline: empty document text")

// Config holds configuration for the extraction pipeline and its stages.
type Config struct {
	Locale         string
	ScoreThreshold int
	DefaultVATRate float64

	// Totals validation tolerances.
	RelTolerance float64
	AbsTolerance float64
	AvgLineValue float64
}

// DefaultConfig returns the default pipeline config: French/Moroccan
// locale, the standard product-line threshold, 20% VAT.
func DefaultConfig() Config {
	return Config{
		Locale:         "fr",
		ScoreThreshold: score.DefaultThreshold,
		DefaultVATRate: 20,
		RelTolerance:   validate.DefaultRelTolerance,
		AbsTolerance:   validate.DefaultAbsTolerance,
		AvgLineValue:   validate.DefaultAvgLineValue,
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
	loc *locale.Locale
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithLocale selects the pattern tables by language name ("fr", "en").
func (b *Builder) WithLocale(name string) *Builder {
	if name != "" {
		b.cfg.Locale = name
	}
	return b
}

// WithLocaleTable supplies a pre-built locale table, e.g. one extended from
// a YAML override file. Takes precedence over WithLocale.
func (b *Builder) WithLocaleTable(loc *locale.Locale) *Builder {
	if loc != nil {
		b.loc = loc
	}
	return b
}

// WithThreshold sets the product-line score threshold.
func (b *Builder) WithThreshold(threshold int) *Builder {
	if threshold > 0 {
		b.cfg.ScoreThreshold = threshold
	}
	return b
}

// WithDefaultVATRate sets the VAT rate stamped on lines that parsed
// without one. Zero disables stamping.
func (b *Builder) WithDefaultVATRate(rate float64) *Builder {
	b.cfg.DefaultVATRate = rate
	return b
}

// WithTolerances sets the totals-validation tolerances.
func (b *Builder) WithTolerances(rel, abs float64) *Builder {
	if rel > 0 {
		b.cfg.RelTolerance = rel
	}
	if abs > 0 {
		b.cfg.AbsTolerance = abs
	}
	return b
}

// WithAvgLineValue sets the average line value used to estimate missing
// line counts.
func (b *Builder) WithAvgLineValue(v float64) *Builder {
	if v > 0 {
		b.cfg.AvgLineValue = v
	}
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.cfg.ScoreThreshold <= 0 {
		return nil, fmt.Errorf("pipeline: score threshold must be positive, got %d", b.cfg.ScoreThreshold)
	}
	if b.cfg.DefaultVATRate < 0 || b.cfg.DefaultVATRate > 100 {
		return nil, fmt.Errorf("pipeline: VAT rate must be within [0,100], got %g", b.cfg.DefaultVATRate)
	}

	loc := b.loc
	if loc == nil {
		loc = locale.ByName(b.cfg.Locale)
	}
	validator := validate.New()
	validator.RelTolerance = b.cfg.RelTolerance
	validator.AbsTolerance = b.cfg.AbsTolerance
	validator.AvgLineValue = b.cfg.AvgLineValue

	return &Pipeline{
		cfg:       b.cfg,
		loc:       loc,
		zones:     zone.NewDetector(loc),
		scorer:    score.NewScorer(loc, b.cfg.ScoreThreshold),
		extractor: lineitem.New(b.cfg.DefaultVATRate),
		contacts:  contact.NewExtractor(loc),
		entities:  entity.NewDetector(loc),
		validator: validator,
	}, nil
}

// Pipeline runs the full extraction over one document at a time.
type Pipeline struct {
	cfg       Config
	loc       *locale.Locale
	zones     *zone.Detector
	scorer    *score.Scorer
	extractor *lineitem.Extractor
	contacts  *contact.Extractor
	entities  *entity.Detector
	validator *validate.Validator
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

// Process extracts structured data from one document's OCR text.
func (p *Pipeline) Process(text string) (*models.Document, error) {
	clean := textutil.CleanOCRText(text)
	if strings.TrimSpace(clean) == "" {
		return nil, ErrEmptyDocument
	}

	zones := p.zones.Detect(clean)

	lines := zone.SplitTableLines(zones.TableText)
	// The column-label row anchors the table zone but is not a record.
	if len(lines) > 0 && p.loc.MatchesTableHeader(lines[0]) && !textutil.HasAmount(lines[0]) {
		lines = lines[1:]
	}
	fragments := merge.Fragments(lines)
	merged, groups := merge.MultiLine(fragments.Lines)

	scores := p.scorer.ScoreLines(merged)
	items, stats := p.extractor.ExtractWithStats(scores)
	stats.MergedLines = fragments.MergeCount + len(groups)

	reported := validate.FindReportedTotal(zones.FooterText, p.loc)

	doc := &models.Document{
		Zones:      zones,
		Lines:      items,
		Contact:    p.contacts.Extract(zones.HeaderText),
		Entities:   p.entities.Detect(zones.HeaderText, zones.FooterText),
		Validation: p.validator.Validate(items, reported),
		Stats:      stats,
	}

	slog.Debug("document processed",
		"table_lines", len(lines),
		"merged", stats.MergedLines,
		"extracted", stats.ExtractedLines,
		"corrupted", stats.CorruptedLines,
		"valid_totals", doc.Validation.IsValid)

	return doc, nil
}
