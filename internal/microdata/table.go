package microdata

import "strings"

// Table is a raw microdata table: a header and string rows. Columns are looked
// up by name; rows shorter than the header read as empty cells.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// NewTable builds a table. Header names are trimmed; the first occurrence of a
// duplicated name wins.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{
		header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
		rows:   rows,
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		t.header[i] = col
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns a copy of the header.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[col]
	return ok
}

// HasAll reports whether every column exists.
func (t *Table) HasAll(cols ...string) bool {
	for _, c := range cols {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

// Missing returns the columns from cols that do not exist.
func (t *Table) Missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if !t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// FirstPresent returns the first of cols that exists.
func (t *Table) FirstPresent(cols ...string) (string, bool) {
	for _, c := range cols {
		if t.Has(c) {
			return c, true
		}
	}
	return "", false
}

// Get returns the trimmed cell at row i for col, or "" when either is absent.
func (t *Table) Get(i int, col string) string {
	idx, ok := t.index[col]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	row := t.rows[i]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// EnsureColumn adds an empty column when it does not exist and returns its index.
func (t *Table) EnsureColumn(col string) int {
	if idx, ok := t.index[col]; ok {
		return idx
	}
	idx := len(t.header)
	t.header = append(t.header, col)
	t.index[col] = idx
	return idx
}

// Set writes a cell, adding the column when needed.
func (t *Table) Set(i int, col, value string) {
	idx := t.EnsureColumn(col)
	row := t.rows[i]
	if idx >= len(row) {
		grown := make([]string, len(t.header))
		copy(grown, row)
		row = grown
		t.rows[i] = row
	}
	row[idx] = value
}

// FillEmpty writes value to a cell only when it is currently empty.
func (t *Table) FillEmpty(i int, col, value string) {
	if value == "" || t.Get(i, col) != "" {
		return
	}
	t.Set(i, col, value)
}

// Project returns a new table with the given columns that exist, in order.
func (t *Table) Project(cols ...string) *Table {
	var keep []string
	for _, c := range cols {
		if t.Has(c) {
			keep = append(keep, c)
		}
	}
	rows := make([][]string, len(t.rows))
	for i := range t.rows {
		row := make([]string, len(keep))
		for j, c := range keep {
			row[j] = t.Get(i, c)
		}
		rows[i] = row
	}
	return NewTable(keep, rows)
}

// Filter returns a new table holding the rows for which keep returns true.
// Rows are shared with the receiver.
func (t *Table) Filter(keep func(i int) bool) *Table {
	var rows [][]string
	for i := range t.rows {
		if keep(i) {
			rows = append(rows, t.rows[i])
		}
	}
	return NewTable(t.header, rows)
}
