package models

import "strings"

// Column is a named, ordered sequence of raw cell values.
type Column struct {
	Name   string
	Values []string
}

// RawTable is the unprocessed tabular payload of a single source file.
// It is written by the fetcher and read once by the normalizer.
type RawTable struct {
	Columns []Column
}

// NewRawTable builds a table from a header row and data rows.
// Short rows are padded with empty cells, extra cells are ignored.
func NewRawTable(header []string, rows [][]string) *RawTable {
	t := &RawTable{Columns: make([]Column, len(header))}
	for i, h := range header {
		t.Columns[i] = Column{
			Name:   strings.TrimSpace(h),
			Values: make([]string, len(rows)),
		}
	}
	for r, row := range rows {
		for c := range t.Columns {
			if c < len(row) {
				t.Columns[c].Values[r] = row[c]
			}
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Index returns the position of the named column, case-insensitively, or -1.
func (t *RawTable) Index(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Lookup returns the first of the candidate column names present in the table.
func (t *RawTable) Lookup(candidates ...string) int {
	for _, name := range candidates {
		if i := t.Index(name); i >= 0 {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at (row, col). Out-of-range access yields "".
func (t *RawTable) Cell(row, col int) string {
	if col < 0 || col >= len(t.Columns) {
		return ""
	}
	vals := t.Columns[col].Values
	if row < 0 || row >= len(vals) {
		return ""
	}
	return strings.TrimSpace(vals[row])
}

// Header returns the column names in order.
func (t *RawTable) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
