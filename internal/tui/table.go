package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// Grid is the two-phase contract between aggregated data and an on-screen
// table: the column schema is registered exactly once, then rows are
// replaced wholesale on every refresh.
type Grid interface {
	RegisterSchema(columns []string) error
	ReplaceRows(rows [][]string) error
}

var (
	ErrSchemaRegistered = errors.New("table schema already registered")
	ErrSchemaMissing    = errors.New("table schema not registered")
	ErrRowWidth         = errors.New("row width does not match schema")
)

var _ Grid = (*dataTable)(nil)

const (
	defaultPageSize = 10
	minColWidth     = 4
	maxColWidth     = 32
)

// columnDef describes a single column in a table.
type columnDef struct {
	Title string
	Width int // preferred width in cells
}

// dataTable is a sortable, paginated and optionally searchable table of
// string cells. Sorting and filtering never mutate allRows, so the cached
// data can be re-derived on every keystroke without refetching.
type dataTable struct {
	title       string
	columns     []columnDef
	allRows     [][]string // rows as delivered by the last ReplaceRows
	displayRows [][]string // after filter + sort applied

	sortCol  int // -1 = engine order
	sortDesc bool
	page     int // 0-indexed
	pageSize int
	cursor   int // row index within the current page

	searchable bool
	search     string
	searching  bool
	input      textinput.Model

	focused bool
	empty   string
}

// newDataTable returns an empty table. Searchable tables accept "/" and
// filter on their first column.
func newDataTable(title string, searchable bool) dataTable {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 80
	return dataTable{
		title:      title,
		sortCol:    -1,
		pageSize:   defaultPageSize,
		searchable: searchable,
		input:      ti,
		empty:      "(no rows)",
	}
}

// RegisterSchema sets the column titles. It may be called once.
func (t *dataTable) RegisterSchema(columns []string) error {
	if t.columns != nil {
		return ErrSchemaRegistered
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrSchemaMissing)
	}
	t.columns = make([]columnDef, len(columns))
	for i, c := range columns {
		t.columns[i] = columnDef{Title: c, Width: runewidth.StringWidth(c) + 2}
	}
	return nil
}

// ReplaceRows swaps in a new row set, keeping the schema, sort, filter and
// page. Every row must have exactly one cell per registered column.
func (t *dataTable) ReplaceRows(rows [][]string) error {
	if t.columns == nil {
		return ErrSchemaMissing
	}
	clean := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) != len(t.columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowWidth, i, len(r), len(t.columns))
		}
		cells := make([]string, len(r))
		for j, c := range r {
			cells[j] = sanitize(c)
		}
		clean[i] = cells
	}
	t.allRows = clean
	t.fitColumns()
	t.apply()
	return nil
}

// registered reports whether the schema has been set.
func (t *dataTable) registered() bool {
	return t.columns != nil
}

// fill registers the schema on first use and replaces the rows.
func (t *dataTable) fill(columns []string, rows [][]string) error {
	if !t.registered() {
		if err := t.RegisterSchema(columns); err != nil {
			return err
		}
	}
	return t.ReplaceRows(rows)
}

func (t *dataTable) fitColumns() {
	for i := range t.columns {
		w := runewidth.StringWidth(t.columns[i].Title) + 2
		for _, r := range t.allRows {
			if cw := runewidth.StringWidth(r[i]) + 1; cw > w {
				w = cw
			}
		}
		t.columns[i].Width = min(w, maxColWidth)
	}
}

// apply re-derives displayRows from allRows.
func (t *dataTable) apply() {
	filtered := filterRows(t.allRows, t.search)
	t.displayRows = sortRows(filtered, t.sortCol, t.sortDesc)
	t.clampPage(len(t.displayRows))
	t.clampCursor(t.currentPageRowCount(len(t.displayRows)))
}

// filtered reports whether a search term is narrowing the rows.
func (t dataTable) filtered() bool {
	return t.search != ""
}

// capturing reports whether the search box owns the keyboard.
func (t dataTable) capturing() bool {
	return t.searching
}

func (t *dataTable) setPageSize(n int) {
	if n < 1 {
		n = 1
	}
	t.pageSize = n
	t.clampPage(len(t.displayRows))
	t.clampCursor(t.currentPageRowCount(len(t.displayRows)))
}

// selected returns the row under the cursor.
func (t dataTable) selected() ([]string, bool) {
	idx := t.page*t.pageSize + t.cursor
	if idx < 0 || idx >= len(t.displayRows) {
		return nil, false
	}
	return t.displayRows[idx], true
}

// Update handles keyboard input for sorting, pagination, cursor movement and
// search.
func (t dataTable) Update(msg tea.Msg) (dataTable, tea.Cmd) {
	if !t.focused {
		return t, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		if t.searching {
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(msg)
			return t, cmd
		}
		return t, nil
	}

	if t.searching {
		switch {
		case key.Matches(km, keys.Escape):
			t.searching = false
			t.input.Blur()
			t.input.SetValue("")
			t.setSearch("")
			return t, nil
		case key.Matches(km, keys.Enter):
			t.searching = false
			t.input.Blur()
			return t, nil
		default:
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(km)
			t.setSearch(t.input.Value())
			return t, cmd
		}
	}

	switch {
	case key.Matches(km, keys.Search) && t.searchable:
		t.searching = true
		t.input.SetValue(t.search)
		t.input.CursorEnd()
		cmd := t.input.Focus()
		return t, cmd
	case key.Matches(km, keys.Escape):
		if t.search != "" {
			t.input.SetValue("")
			t.setSearch("")
		}
	case key.Matches(km, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		} else if t.page > 0 {
			t.page--
			t.cursor = t.pageSize - 1
		}
	case key.Matches(km, keys.Down):
		if t.cursor < t.currentPageRowCount(len(t.displayRows))-1 {
			t.cursor++
		} else if t.page < pageCount(len(t.displayRows), t.pageSize)-1 {
			t.page++
			t.cursor = 0
		}
	case key.Matches(km, keys.PrevPage):
		if t.page > 0 {
			t.page--
			t.cursor = 0
		}
	case key.Matches(km, keys.NextPage):
		if t.page < pageCount(len(t.displayRows), t.pageSize)-1 {
			t.page++
			t.cursor = 0
		}
	default:
		// Digit keys 1-9 → set sort column.
		col := digitToCol(km.String())
		if col >= 0 && col < len(t.columns) {
			if col == t.sortCol {
				t.sortDesc = !t.sortDesc
			} else {
				t.sortCol = col
				t.sortDesc = col != 0 // names ascend, counters descend
			}
			t.page = 0
			t.cursor = 0
			t.apply()
		}
	}
	t.clampPage(len(t.displayRows))
	t.clampCursor(t.currentPageRowCount(len(t.displayRows)))
	return t, nil
}

func (t *dataTable) setSearch(term string) {
	if term == t.search {
		return
	}
	t.search = term
	t.page = 0
	t.cursor = 0
	t.apply()
}

// View renders the title bar followed by the current page of rows.
func (t dataTable) View(width int) string {
	pc := pageCount(len(t.displayRows), t.pageSize)
	hdr := t.renderTitle(t.page+1, pc)

	if !t.registered() {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (waiting for data)"))
	}

	var colWidths []int
	if width > 0 {
		colWidths = columnWidths(width, t.columns)
	}

	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		h := c.Title
		if i == t.sortCol {
			if t.sortDesc {
				h += "↓"
			} else {
				h += "↑"
			}
		}
		if len(colWidths) == len(t.columns) {
			h = truncateName(h, colWidths[i])
			if w := runewidth.StringWidth(h); w < colWidths[i] {
				h += strings.Repeat(" ", colWidths[i]-w)
			}
		}
		headers[i] = h
	}

	allIdx := make([]int, len(t.displayRows))
	for i := range t.displayRows {
		allIdx[i] = i
	}
	pageIdx := currentPageIndices(allIdx, t.page, t.pageSize)

	if len(pageIdx) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  "+t.empty))
	}

	sortCol := t.sortCol
	focused := t.focused
	cursor := t.cursor
	tbl := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle().PaddingRight(1)
			if focused && row == cursor {
				base = base.Background(colorSelectedBg)
			} else if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			if col == 0 {
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorCyan)
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if width > 0 {
		tbl = tbl.Width(width)
	}

	for _, idx := range pageIdx {
		r := t.displayRows[idx]
		cells := make([]string, len(r))
		for col, c := range r {
			if len(colWidths) == len(r) {
				c = truncateName(c, colWidths[col]-1)
			}
			cells[col] = c
		}
		tbl = tbl.Row(cells...)
	}

	// Show the full first cell when it may have been truncated.
	if t.focused && t.cursor < len(pageIdx) {
		r := t.displayRows[pageIdx[t.cursor]]
		return lipgloss.JoinVertical(lipgloss.Left, hdr, tbl.String(), StyleDim.Render("  "+r[0]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, hdr, tbl.String())
}

// renderTitle renders the title bar with search/sort/page hints.
// While searching, the live textinput view replaces the hints.
func (t dataTable) renderTitle(page, pages int) string {
	title := StyleSectionTitle.Render(t.title)
	if t.focused {
		title = StyleSectionTitle.Underline(true).Render(t.title)
	}
	pageInfo := fmt.Sprintf("Page %d/%d", page, pages)

	var right string
	switch {
	case t.searching:
		right = "Search: " + t.input.View()
	case t.search != "":
		right = fmt.Sprintf("filter=%q  %s", t.search, pageInfo)
	case t.searchable:
		right = "[/: search]  [1-9: sort]  [←→: page]  " + pageInfo
	default:
		right = "[1-9: sort]  [←→: page]  " + pageInfo
	}
	return title + "  " + StyleDim.Render(right)
}

// digitToCol converts a "1"–"9" key string to a 0-indexed column number.
// Returns -1 for any other string.
func digitToCol(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '1')
	}
	return -1
}

// pageCount returns the total number of pages for totalRows rows at pageSize rows per page.
// Always at least 1.
func pageCount(totalRows, pageSize int) int {
	if totalRows == 0 || pageSize <= 0 {
		return 1
	}
	c := totalRows / pageSize
	if totalRows%pageSize != 0 {
		c++
	}
	return c
}

// currentPageIndices returns the slice of row indices visible on the current page.
func currentPageIndices(allIndices []int, page, pageSize int) []int {
	if pageSize <= 0 || len(allIndices) == 0 {
		return allIndices
	}
	start := page * pageSize
	if start >= len(allIndices) {
		start = 0
	}
	end := start + pageSize
	if end > len(allIndices) {
		end = len(allIndices)
	}
	return allIndices[start:end]
}

// clampPage keeps the page index within bounds for totalRows.
func (t *dataTable) clampPage(totalRows int) {
	pc := pageCount(totalRows, t.pageSize)
	if t.page >= pc {
		t.page = pc - 1
	}
	if t.page < 0 {
		t.page = 0
	}
}

// currentPageRowCount returns how many rows the current page shows.
func (t *dataTable) currentPageRowCount(totalRows int) int {
	if t.pageSize <= 0 {
		return totalRows
	}
	n := totalRows - t.page*t.pageSize
	switch {
	case n < 0:
		return 0
	case n > t.pageSize:
		return t.pageSize
	default:
		return n
	}
}

// clampCursor keeps the cursor within [0, pageRows).
func (t *dataTable) clampCursor(pageRows int) {
	if pageRows <= 0 || t.cursor < 0 {
		t.cursor = 0
		return
	}
	if t.cursor >= pageRows {
		t.cursor = pageRows - 1
	}
}

// columnWidths distributes available cells across defs in proportion to
// their preferred widths. Each column gets at least minColWidth and the last
// column absorbs rounding. A non-positive available returns the preferred
// widths unchanged.
func columnWidths(available int, defs []columnDef) []int {
	out := make([]int, len(defs))
	if len(defs) == 0 {
		return out
	}
	if available <= 0 {
		for i, d := range defs {
			out[i] = d.Width
		}
		return out
	}

	total := 0
	for _, d := range defs {
		total += max(d.Width, 1)
	}

	used := 0
	for i, d := range defs {
		var w int
		if i == len(defs)-1 {
			w = available - used
		} else {
			w = available * max(d.Width, 1) / total
		}
		if w < minColWidth {
			w = minColWidth
		}
		out[i] = w
		used += w
	}
	return out
}

// truncateName shortens s to at most maxWidth display cells, ending in
// "..." when there is room for it.
func truncateName(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
