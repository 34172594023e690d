package microdata

import (
	"context"
	"io/fs"
	"sort"
)

// MemorySource serves tables held in memory. Tables are copied on Read so
// callers may mutate them.
type MemorySource struct {
	tables map[FileKind]map[int]*Table
	errs   map[FileKind]map[int]error
}

// NewMemorySource returns an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		tables: make(map[FileKind]map[int]*Table),
		errs:   make(map[FileKind]map[int]error),
	}
}

// Put registers a table for kind and year.
func (m *MemorySource) Put(kind FileKind, year int, header []string, rows ...[]string) *MemorySource {
	if m.tables[kind] == nil {
		m.tables[kind] = make(map[int]*Table)
	}
	m.tables[kind][year] = NewTable(header, rows)
	return m
}

// Fail makes Read return err for kind and year.
func (m *MemorySource) Fail(kind FileKind, year int, err error) *MemorySource {
	if m.errs[kind] == nil {
		m.errs[kind] = make(map[int]error)
	}
	m.errs[kind][year] = err
	return m
}

// Years returns every year with a course table or a course failure.
func (m *MemorySource) Years(_ context.Context) ([]int, error) {
	seen := make(map[int]bool)
	for y := range m.tables[Courses] {
		seen[y] = true
	}
	for y := range m.errs[Courses] {
		seen[y] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// Read returns a copy of the registered table.
func (m *MemorySource) Read(_ context.Context, kind FileKind, year int) (*Table, error) {
	if err := m.errs[kind][year]; err != nil {
		return nil, err
	}
	t, ok := m.tables[kind][year]
	if !ok {
		return nil, &SourceError{Kind: MissingSourceFile, Year: year, Path: FileName(kind, year), Err: fs.ErrNotExist}
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rows[i] = append([]string(nil), r...)
	}
	return NewTable(t.header, rows), nil
}
