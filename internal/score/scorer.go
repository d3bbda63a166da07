// Package score assigns every candidate table line a heuristic score and the
// list of criteria behind it. The line-item extractor consumes these scores;
// no line is dropped here, whatever its score.
package score

import (
	"strings"

	"github.com/facto-ocr/facto/internal/locale"
	"github.com/facto-ocr/facto/internal/models"
	"github.com/facto-ocr/facto/internal/textutil"
)

const (
	// DefaultThreshold is the score at which a line counts as a product line.
	DefaultThreshold = 3

	// RejectScore is the sentinel for definite non-product lines.
	RejectScore = -10

	// minLineLength is the fast-reject floor.
	minLineLength = 10
)

// Scorer scores candidate lines against one locale's keyword tables.
type Scorer struct {
	loc       *locale.Locale
	threshold int
}

// NewScorer builds a scorer. A zero or negative threshold selects the
// default.
func NewScorer(loc *locale.Locale, threshold int) *Scorer {
	if loc == nil {
		loc = locale.Default()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scorer{loc: loc, threshold: threshold}
}

// Threshold returns the configured product-line threshold.
func (s *Scorer) Threshold() int { return s.threshold }

// ScoreLines scores every line. All lines are returned, including rejected
// ones, so downstream consumers can account for each candidate.
func (s *Scorer) ScoreLines(lines []string) []models.LineScore {
	scores := make([]models.LineScore, 0, len(lines))
	for i, line := range lines {
		prev, next := "", ""
		if i > 0 {
			prev = lines[i-1]
		}
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		scores = append(scores, s.ScoreLine(line, i, prev, next))
	}
	return scores
}

// ScoreLine scores a single line given its neighbors. Scoring short-circuits
// once the threshold is reached.
func (s *Scorer) ScoreLine(line string, index int, prev, next string) models.LineScore {
	trimmed := strings.TrimSpace(line)
	ls := models.LineScore{Text: line, Index: index}

	if reason, rejected := s.fastReject(trimmed); rejected {
		ls.Score = RejectScore
		ls.Criteria = []string{reason}
		return ls
	}

	add := func(points int, criterion string) bool {
		ls.Score += points
		ls.Criteria = append(ls.Criteria, criterion)
		return ls.Score >= s.threshold
	}

	if textutil.BarcodePattern.MatchString(trimmed) {
		if add(3, "barcode") {
			return ls
		}
	} else if textutil.TruncatedBarcodePattern.MatchString(trimmed) {
		if add(2, "truncated_barcode") {
			return ls
		}
	} else if textutil.DashedRefPattern.MatchString(trimmed) {
		if add(3, "dashed_reference") {
			return ls
		}
	} else if textutil.NumericSuffixRefPattern.MatchString(trimmed) {
		if add(3, "reference_code") {
			return ls
		}
	}

	if textutil.IndexMarkerPattern.MatchString(trimmed) {
		if add(1, "index_marker") {
			return ls
		}
	}

	if textutil.PercentPattern.MatchString(trimmed) {
		if add(1, "percentage") {
			return ls
		}
	}

	switch amounts := textutil.CountAmounts(trimmed); {
	case amounts >= 2:
		if add(2, "multiple_amounts") {
			return ls
		}
	case amounts == 1:
		if add(1, "single_amount") {
			return ls
		}
	}

	if textutil.QuantityPattern.MatchString(trimmed) {
		if add(1, "quantity_token") {
			return ls
		}
	}

	switch cols := len(textutil.SplitColumns(line)); {
	case cols >= 4:
		if add(2, "columnar_layout") {
			return ls
		}
	case cols == 3:
		if add(1, "columnar_layout") {
			return ls
		}
	}

	if startsWithBarcode(prev) || startsWithBarcode(next) {
		if add(1, "adjacent_barcode") {
			return ls
		}
	}

	return ls
}

// fastReject applies the hard negative rules. Any hit overrides all positive
// criteria.
func (s *Scorer) fastReject(trimmed string) (string, bool) {
	if len(trimmed) < minLineLength {
		return "too_short", true
	}
	if s.loc.MatchesTotal(trimmed) {
		return "total_keyword", true
	}
	if !textutil.HasAmount(trimmed) &&
		(s.loc.MatchesHeaderMeta(trimmed) || s.loc.MatchesTableHeader(trimmed)) {
		return "header_keyword", true
	}
	if s.loc.MatchesNoise(trimmed) {
		return "noise_keyword", true
	}
	return "", false
}

func startsWithBarcode(line string) bool {
	return textutil.BarcodePattern.MatchString(strings.TrimSpace(line))
}
