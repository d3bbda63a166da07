// Package zone splits a whole OCR document into header, table and footer
// regions. Every downstream extractor consumes one of these zones instead of
// the raw document.
package zone

import (
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

// fallbackRatio is the share of lines attributed to header/footer when no
// structural cue is found.
const fallbackRatio = 0.15

// Detector locates zone boundaries using the locale's keyword tables.
type Detector struct {
	loc *locale.Locale
}

// NewDetector returns a zone detector for the given locale.
func NewDetector(loc *locale.Locale) *Detector {
	if loc == nil {
		loc = locale.Default()
	}
	return &Detector{loc: loc}
}

// Detect computes the header/table/footer split of a document. The text is
// expected to be cleaned (textutil.CleanOCRText) beforehand.
func (d *Detector) Detect(text string) models.DocumentZones {
	lines := strings.Split(text, "\n")
	n := len(lines)

	tableStart, found := d.findTableStart(lines)
	headerEnd := tableStart
	if !found {
		headerEnd = fallbackCount(n)
		tableStart = headerEnd
	}

	footerStart, found := d.findFooterStart(lines, tableStart)
	if !found {
		footerStart = n - fallbackCount(n)
		if footerStart < tableStart {
			footerStart = n
		}
	}

	z := models.DocumentZones{
		HeaderStart: 0,
		HeaderEnd:   headerEnd,
		TableStart:  tableStart,
		TableEnd:    footerStart,
		FooterStart: footerStart,
		FooterEnd:   n,
	}
	z.HeaderText = strings.Join(lines[z.HeaderStart:z.HeaderEnd], "\n")
	z.TableText = strings.Join(lines[z.TableStart:z.TableEnd], "\n")
	z.FooterText = strings.Join(lines[z.FooterStart:z.FooterEnd], "\n")
	return z
}

// HeaderText is a convenience for contact extraction.
func (d *Detector) HeaderText(text string) string {
	return d.Detect(text).HeaderText
}

// TableLines returns the trimmed, non-blank lines of the table zone, the
// input of line extraction.
func (d *Detector) TableLines(text string) []string {
	return SplitTableLines(d.Detect(text).TableText)
}

// SplitTableLines trims and drops blank lines from a table-zone text.
func SplitTableLines(tableText string) []string {
	var out []string
	for _, line := range strings.Split(tableText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// findTableStart scans for the first line that looks like the top of the
// product table: the column-label row, or a product row anchored by a
// barcode or dashed reference next to a currency amount.
func (d *Detector) findTableStart(lines []string) (int, bool) {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if d.loc.MatchesTableHeader(trimmed) {
			return i, true
		}
		startsRef := textutil.BarcodePattern.MatchString(trimmed) ||
			textutil.DashedRefPattern.MatchString(trimmed)
		if startsRef && textutil.HasAmount(trimmed) {
			return i, true
		}
	}
	return 0, false
}

// findFooterStart scans forward from the table start for the totals block:
// either a total keyword line, or a run of >=3 amount-free lines followed
// within 5 lines by a total keyword (the legal boilerplate above the total).
func (d *Detector) findFooterStart(lines []string, tableStart int) (int, bool) {
	n := len(lines)
	for i := tableStart + 1; i < n; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if d.loc.MatchesTotal(trimmed) {
			return i, true
		}
		if runStart, ok := d.amountFreeRun(lines, i); ok {
			return runStart, true
		}
	}
	return 0, false
}

// amountFreeRun checks whether an amount-free run of >=3 lines starts at i
// and a total keyword follows within 5 lines of the run's end.
func (d *Detector) amountFreeRun(lines []string, i int) (int, bool) {
	n := len(lines)
	runLen := 0
	j := i
	for ; j < n; j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" || textutil.HasAmount(trimmed) {
			break
		}
		runLen++
	}
	if runLen < 3 {
		return 0, false
	}
	for k := j; k < n && k < j+5; k++ {
		if d.loc.MatchesTotal(strings.TrimSpace(lines[k])) {
			return i, true
		}
	}
	return 0, false
}

func fallbackCount(n int) int {
	c := int(float64(n) * fallbackRatio)
	if c < 1 && n > 0 {
		c = 1
	}
	return c
}
