package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeSortRows() [][]string {
	return [][]string{
		{"gpu", "12", "1,200", "45.0%"},
		{"batch", "40", "80", "92.5%"},
		{"debug", "2", "9,999", "5.0%"},
		{"Interactive", "12", "16", "N/A"},
	}
}

func names(rows [][]string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out
}

func TestSortRows_NumericDescending(t *testing.T) {
	got := sortRows(makeSortRows(), 1, true)
	// gpu and Interactive tie on 12 and fall back to name ascending.
	assert.Equal(t, []string{"batch", "gpu", "Interactive", "debug"}, names(got))
}

func TestSortRows_NumericAscending(t *testing.T) {
	got := sortRows(makeSortRows(), 1, false)
	assert.Equal(t, []string{"debug", "gpu", "Interactive", "batch"}, names(got))
}

func TestSortRows_ThousandsSeparators(t *testing.T) {
	got := sortRows(makeSortRows(), 2, true)
	assert.Equal(t, []string{"debug", "gpu", "batch", "Interactive"}, names(got),
		"9,999 > 1,200 > 80 > 16 numerically, not lexically")
}

func TestSortRows_Percentages(t *testing.T) {
	got := sortRows(makeSortRows()[:3], 3, true)
	assert.Equal(t, []string{"batch", "gpu", "debug"}, names(got))
}

func TestSortRows_NameCaseInsensitive(t *testing.T) {
	got := sortRows(makeSortRows(), 0, false)
	assert.Equal(t, []string{"batch", "debug", "gpu", "Interactive"}, names(got))

	got = sortRows(makeSortRows(), 0, true)
	assert.Equal(t, []string{"Interactive", "gpu", "debug", "batch"}, names(got))
}

func TestSortRows_NoSort(t *testing.T) {
	got := sortRows(makeSortRows(), -1, false)
	assert.Equal(t, names(makeSortRows()), names(got), "col -1 keeps input order")
}

func TestSortRows_DoesNotMutateInput(t *testing.T) {
	rows := makeSortRows()
	_ = sortRows(rows, 1, true)
	assert.Equal(t, "gpu", rows[0][0], "input slice order must be unchanged")
}

func TestSortRows_MixedNumericAndText(t *testing.T) {
	rows := [][]string{{"a", "10"}, {"b", "N/A"}, {"c", "9"}}
	got := sortRows(rows, 1, false)
	// 9 < 10 numerically; text compares lexically against numbers.
	assert.Equal(t, []string{"c", "a", "b"}, names(got))
}

func TestSortRows_ShortRowsSortAsEmpty(t *testing.T) {
	rows := [][]string{{"a", "3"}, {"b"}, {"c", "1"}}
	got := sortRows(rows, 1, false)
	assert.Equal(t, []string{"b", "c", "a"}, names(got))
}

func TestFilterRows(t *testing.T) {
	rows := [][]string{
		{"node-001", "idle"},
		{"node-002", "mixed"},
		{"gpu-001", "idle"},
		{"GPU-big", "down"},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty term keeps all", "", []string{"node-001", "node-002", "gpu-001", "GPU-big"}},
		{"substring", "001", []string{"node-001", "gpu-001"}},
		{"case insensitive", "gpu", []string{"gpu-001", "GPU-big"}},
		{"upper case term", "NODE", []string{"node-001", "node-002"}},
		{"only first column", "idle", nil},
		{"no match", "zzz", nil},
		{"special chars are literal", ".*", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := filterRows(rows, tc.term)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"1,234", 1234, true},
		{"87.5%", 87.5, true},
		{" 7 ", 7, true},
		{"-3", -3, true},
		{"", 0, false},
		{"%", 0, false},
		{"N/A", 0, false},
		{"00:05:00", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseNumeric(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}
