package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragments(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		expected   []string
		mergeCount int
	}{
		{
			name: "truncated barcode line with dash continuation",
			lines: []string{
				"197737121563 SAFILO 7A086 MON-",
				"- TURE NOIRE 1 1010.00 858.50",
			},
			expected: []string{
				"197737121563 SAFILO 7A086 MON- - TURE NOIRE 1 1010.00 858.50",
			},
			mergeCount: 1,
		},
		{
			name: "lowercase continuation needs two amounts",
			lines: []string{
				"REF-1234 VERRE PROGRESSIF ana",
				"tomique 2 350,00 700,00",
			},
			expected: []string{
				"REF-1234 VERRE PROGRESSIF ana tomique 2 350,00 700,00",
			},
			mergeCount: 1,
		},
		{
			name: "complete lines pass through",
			lines: []string{
				"197737121563 SAFILO 7A086 1 1010.00 858.50",
				"197737121570 CARRERA 8859 2 450.00 900.00",
			},
			expected: []string{
				"197737121563 SAFILO 7A086 1 1010.00 858.50",
				"197737121570 CARRERA 8859 2 450.00 900.00",
			},
			mergeCount: 0,
		},
		{
			name: "next line starting a new record is not a fragment",
			lines: []string{
				"197737121563 SAFILO MON-",
				"197737121570 CARRERA 8859 2 450.00 900.00",
			},
			expected: []string{
				"197737121563 SAFILO MON-",
				"197737121570 CARRERA 8859 2 450.00 900.00",
			},
			mergeCount: 0,
		},
		{
			name: "lowercase continuation with single amount stays split",
			lines: []string{
				"197737121563 SAFILO MON-",
				"ture noire 858.50",
			},
			expected: []string{
				"197737121563 SAFILO MON-",
				"ture noire 858.50",
			},
			mergeCount: 0,
		},
		{
			name:       "empty input",
			lines:      nil,
			expected:   []string{},
			mergeCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Fragments(tt.lines)
			assert.Equal(t, tt.expected, res.Lines)
			assert.Equal(t, tt.mergeCount, res.MergeCount)
		})
	}
}

func TestMultiLineIdentifierGroup(t *testing.T) {
	lines := []string{
		"197737121563",
		"SAFILO 7A086 54.19 GREY",
		"1 1010.00 15% 858.50",
		"197737121570 CARRERA 8859 2 450.00 900.00",
	}
	merged, groups := MultiLine(lines)

	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1}, groups[0].Indices)
	assert.Contains(t, groups[0].Text, "197737121563")
	assert.Contains(t, groups[0].Text, "SAFILO")
	assert.Greater(t, groups[0].Confidence, 0.5)

	// Two logical records remain: the merged one and the untouched one.
	require.Len(t, merged, 3)
	assert.Contains(t, merged[2], "CARRERA")
}

func TestMultiLineIdentifierGroupNoAmounts(t *testing.T) {
	// Amounts never show up within the lookahead: nothing merges.
	lines := []string{
		"197737121563",
		"SAFILO SEVENTY",
		"GREY HAVANA",
		"MONTURE METAL",
		"SANS PRIX",
	}
	merged, groups := MultiLine(lines)
	assert.Empty(t, groups)
	assert.Equal(t, lines, merged)
}

func TestMultiLineDescriptionGroup(t *testing.T) {
	lines := []string{
		"VERRE PROGRESSIF ESSILOR",
		"TRAITEMENT ANTIREFLET",
		"2 350.00 700.00",
	}
	merged, groups := MultiLine(lines)

	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1, 2}, groups[0].Indices)
	require.Len(t, merged, 1)
	assert.Equal(t, "VERRE PROGRESSIF ESSILOR TRAITEMENT ANTIREFLET 2 350.00 700.00", merged[0])
}

func TestMultiLinePercentageBoostsConfidence(t *testing.T) {
	withPct, groupsPct := MultiLine([]string{"197737121563", "SAFILO 1 1010.00 15% 858.50"})
	plain, groupsPlain := MultiLine([]string{"197737121563", "SAFILO 1 1010.00 858.50"})
	require.Len(t, groupsPct, 1)
	require.Len(t, groupsPlain, 1)
	assert.Greater(t, groupsPct[0].Confidence, groupsPlain[0].Confidence)
	require.Len(t, withPct, 1)
	require.Len(t, plain, 1)
}

func TestMultiLineLeavesCompleteLinesAlone(t *testing.T) {
	lines := []string{
		"197737121563 SAFILO 7A086 1 1010.00 858.50",
		"197737121570 CARRERA 8859 2 450.00 900.00",
	}
	merged, groups := MultiLine(lines)
	assert.Empty(t, groups)
	assert.Equal(t, lines, merged)
}
