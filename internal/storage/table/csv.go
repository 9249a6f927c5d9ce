package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a headered CSV. Short rows are padded with blanks; rows wider
// than the header fail.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i, record := range records[1:] {
		if len(record) > len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, expected %d", ErrRaggedRow, i+2, len(record), len(header))
		}
	}
	return New(header, records[1:]), nil
}

// ReadCSVHeaderless reads a CSV without a header row. The column count is
// taken from the first record; shorter rows are padded and wider rows fail.
// Columns are named by position ("0", "1", ...).
func ReadCSVHeaderless(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	width := -1
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: read csv: %w", err)
		}
		if width < 0 {
			width = len(record)
		}
		if len(record) > width {
			return nil, fmt.Errorf("%w: line %d has %d fields, expected %d", ErrRaggedRow, line, len(record), width)
		}
		rows = append(rows, record)
	}
	if width < 0 {
		return nil, ErrEmptyFile
	}
	columns := make([]string, width)
	for i := range columns {
		columns[i] = fmt.Sprintf("%d", i)
	}
	return New(columns, rows), nil
}

// Rename returns a copy of t with new column names. The count must match.
func (t *Table) Rename(columns []string) (*Table, error) {
	if len(columns) != len(t.Columns) {
		return nil, fmt.Errorf("table: rename %d columns to %d names", len(t.Columns), len(columns))
	}
	return New(columns, t.Rows), nil
}

// WriteCSV writes a header row and rows.
func WriteCSV(w io.Writer, columns []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}
