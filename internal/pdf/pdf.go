// Package pdf reads the embedded text layer out of born-digital invoice
// PDFs. The pipeline consumes plain text; this is the input adapter for
// suppliers who send real PDFs instead of scans. Scanned PDFs have no text
// layer and come back with a low quality score, signalling that the caller
// must run OCR externally and feed the text in directly.
package pdf

import (
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// PageText is the text extraction result for one page.
type PageText struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	WordCount  int     `json:"word_count"`
	Quality    Quality `json:"quality"`
}

// Quality assesses how usable a page's embedded text is.
type Quality struct {
	Score        float64 `json:"score"`
	HasText      bool    `json:"has_text"`
	IsSearchable bool    `json:"is_searchable"`
	AlphaRatio   float64 `json:"alpha_ratio"`
}

// DocumentText aggregates the extracted pages of one file.
type DocumentText struct {
	Pages []PageText `json:"pages"`
	Text  string     `json:"text"`
}

// Extractor pulls embedded text from PDF files.
type Extractor struct {
	qualityThreshold float64
}

// NewExtractor creates a text extractor. Pages scoring below the threshold
// are reported as unusable; zero or negative selects the default of 0.7.
func NewExtractor(qualityThreshold float64) *Extractor {
	if qualityThreshold <= 0 {
		qualityThreshold = 0.7
	}
	return &Extractor{qualityThreshold: qualityThreshold}
}

// ExtractFile reads the embedded text of the selected pages. An empty page
// range means all pages. Pages that fail to decode are skipped; the method
// errors only when the file itself cannot be opened or the range is bad.
func (e *Extractor) ExtractFile(filename, pageRange string) (*DocumentText, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	reader, err := pdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %q: %w", filename, err)
	}

	total := reader.NumPage()
	if len(pages) == 0 {
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
	}

	doc := &DocumentText{}
	var all strings.Builder
	for _, num := range pages {
		if num < 1 || num > total {
			continue
		}
		page, err := e.extractPage(reader, num)
		if err != nil {
			continue
		}
		doc.Pages = append(doc.Pages, page)
		if all.Len() > 0 {
			all.WriteString("\n")
		}
		all.WriteString(page.Text)
	}
	doc.Text = all.String()
	return doc, nil
}

// extractPage reads one page, preferring row-grouped text so the pipeline
// sees the same line structure OCR output would have.
func (e *Extractor) extractPage(reader *pdf.Reader, num int) (PageText, error) {
	page := reader.Page(num)
	if page.V.IsNull() {
		return PageText{}, fmt.Errorf("page %d is null", num)
	}

	var text strings.Builder
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		for _, row := range rows {
			for i, t := range row.Content {
				if i > 0 {
					text.WriteString(" ")
				}
				text.WriteString(t.S)
			}
			text.WriteString("\n")
		}
	} else {
		fonts := make(map[string]*pdf.Font)
		plain, _ := page.GetPlainText(fonts)
		text.WriteString(plain)
	}

	content := text.String()
	return PageText{
		PageNumber: num,
		Text:       content,
		WordCount:  len(strings.Fields(content)),
		Quality:    assessQuality(content),
	}, nil
}

// IsQualityAcceptable reports whether the page's text clears the threshold.
func (e *Extractor) IsQualityAcceptable(page PageText) bool {
	return page.Quality.Score >= e.qualityThreshold
}

// QualityThreshold returns the configured threshold.
func (e *Extractor) QualityThreshold() float64 { return e.qualityThreshold }

// assessQuality scores the embedded text: presence, enough words, and a
// sane alphanumeric share all contribute.
func assessQuality(text string) Quality {
	trimmed := strings.TrimSpace(text)
	hasText := trimmed != ""
	words := len(strings.Fields(text))

	var ratio float64
	if len(trimmed) > 0 {
		alnum := 0
		for _, r := range trimmed {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				alnum++
			}
		}
		ratio = float64(alnum) / float64(len([]rune(trimmed)))
	}

	score := 0.0
	if hasText {
		score += 0.4
		if words > 5 {
			score += 0.3
		}
		if ratio >= 0.5 {
			score += 0.3
		}
	}

	return Quality{
		Score:        score,
		HasText:      hasText,
		IsSearchable: hasText && words > 0,
		AlphaRatio:   ratio,
	}
}
