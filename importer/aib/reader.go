package aib

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one CSV statement row, keyed by header name, with the line number
// it came from in the source file.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the named field, or "" when the column is absent.
func (r Row) Get(name string) string {
	return r.Fields[name]
}

// Has reports whether the column exists in this export.
func (r Row) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// File is a parsed CSV export: the header in file order plus all data rows.
type File struct {
	Name   string
	Header []string
	Rows   []Row
}

// first returns the value of the leading column of row; AIB puts the
// account identifier there in every export flavour.
func (f *File) first(row Row) string {
	if len(f.Header) == 0 {
		return ""
	}
	return row.Fields[f.Header[0]]
}

// ReadFile parses a CSV export into header and rows, recording the source
// line of every row. Header names have surrounding whitespace trimmed;
// field values are kept as-is.
func ReadFile(name string, r io.Reader) (*File, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(records) == 0 {
		return &File{Name: name}, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	f := &File{Name: name, Header: header}
	for i, record := range records[1:] {
		row := Row{Line: i + 2, Fields: make(map[string]string, len(header))}
		for j, h := range header {
			if j < len(record) {
				row.Fields[h] = record[j]
			}
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}
