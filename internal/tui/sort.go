package tui

import (
	"sort"
	"strconv"
	"strings"
)

// sortRows returns a sorted copy of rows ordered by column col.
//
// Cells that parse as numbers (thousands separators and a trailing % are
// ignored) compare numerically; anything else compares case-insensitively.
// col -1 means no sort (preserve order). Ties are broken by column 0
// ascending.
func sortRows(rows [][]string, col int, desc bool) [][]string {
	out := make([][]string, len(rows))
	copy(out, rows)

	if col < 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := cellAt(out[i], col), cellAt(out[j], col)
		c := compareCells(a, b)
		if c == 0 {
			return strings.ToLower(cellAt(out[i], 0)) < strings.ToLower(cellAt(out[j], 0))
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// filterRows returns the rows whose first column contains term,
// case-insensitively. An empty term returns all rows.
func filterRows(rows [][]string, term string) [][]string {
	if term == "" {
		return rows
	}
	lower := strings.ToLower(term)
	var out [][]string
	for _, r := range rows {
		if strings.Contains(strings.ToLower(cellAt(r, 0)), lower) {
			out = append(out, r)
		}
	}
	return out
}

func compareCells(a, b string) int {
	na, aok := parseNumeric(a)
	nb, bok := parseNumeric(b)
	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "%")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
