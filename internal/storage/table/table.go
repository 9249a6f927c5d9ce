// Package table reads and writes flat tabular files (CSV and XLSX).
package table

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("table: empty file")
	// ErrUnsupportedFormat is returned for file extensions without a reader.
	ErrUnsupportedFormat = errors.New("table: unsupported format")
	// ErrRaggedRow is returned when a row is wider than the header.
	ErrRaggedRow = errors.New("table: row wider than header")
)

// Table is an in-memory string table. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// New builds a table, padding short rows with blanks.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range t.Columns {
		col = strings.TrimSpace(col)
		t.Columns[i] = col
		if _, ok := t.index[col]; !ok {
			t.index[col] = i
		}
	}
	t.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		t.Rows = append(t.Rows, pad(row, len(columns)))
	}
	return t
}

// Empty returns a table with columns and no rows.
func Empty(columns []string) *Table {
	return New(columns, nil)
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[column]
	return ok
}

// HasAll reports whether every column exists.
func (t *Table) HasAll(columns ...string) bool {
	for _, column := range columns {
		if !t.Has(column) {
			return false
		}
	}
	return true
}

// Value returns the trimmed cell of row i in column, or "" if the column is
// absent. Use it for keys, dates and numbers.
func (t *Table) Value(i int, column string) string {
	return strings.TrimSpace(t.Raw(i, column))
}

// Raw returns the cell of row i in column as stored, for free-text columns.
func (t *Table) Raw(i int, column string) string {
	if column == "" {
		return ""
	}
	idx, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Rows[i][idx]
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Lookup returns the first of the candidate names present in the table.
func (t *Table) Lookup(candidates ...string) (string, bool) {
	for _, name := range candidates {
		if t.Has(name) {
			return name, true
		}
	}
	return "", false
}
