// Package tabular reads and writes whole named tables (sheets) kept in files.
package tabular

import (
	"context"
	"sort"
)

// DefaultSheet is the sheet name used when a table is written without a name.
const DefaultSheet = "Sheet1"

// Row maps a column name to a cell value: int64, float64, bool or string.
// Empty cells are absent.
type Row map[string]interface{}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Table is an ordered sequence of rows; Header is the column order read from, or written to, the file.
type Table struct {
	Header []string
	Rows   []Row
}

// Columns returns Header followed by any other key used by a row, sorted.
func (t Table) Columns() []string {
	seen := make(map[string]bool, len(t.Header))
	cols := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if !seen[h] {
			seen[h] = true
			cols = append(cols, h)
		}
	}

	var extra []string
	for _, row := range t.Rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// Clone returns a copy of the table whose rows can be mutated freely.
func (t Table) Clone() Table {
	c := Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = row.Clone()
	}
	return c
}

// Store persists tables at whole-table granularity.
type Store interface {
	// ReadTable returns the named table. A store without data yields an empty table, not an error.
	ReadTable(ctx context.Context, name string) (Table, error)
	// WriteTable replaces the named table's entire contents.
	WriteTable(ctx context.Context, table Table, name string) error
	// Location identifies where the store keeps its data.
	Location() string
}
