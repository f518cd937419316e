package iss

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Document is a decoded ISS response: a JSON object of named blocks.
type Document []byte

// Record maps column names to cell values for one row of a block.
// Values follow gjson conventions: float64, string, bool or nil.
type Record map[string]any

// Table is a named block shaped as parallel columns/data arrays.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]gjson.Result
}

// Table extracts the named block from the document. Returns ErrBlockMissing
// if the block is absent and ErrSchema if a row is narrower or wider than
// the column list.
func (d Document) Table(name string) (*Table, error) {
	block := gjson.GetBytes(d, gjson.Escape(name))
	if !block.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrBlockMissing, name)
	}

	cols := block.Get("columns")
	data := block.Get("data")
	if !cols.IsArray() || !data.IsArray() {
		return nil, fmt.Errorf("%w: block %s has no columns/data arrays", ErrSchema, name)
	}

	t := &Table{Name: name}
	for _, c := range cols.Array() {
		t.Columns = append(t.Columns, c.String())
	}

	for i, r := range data.Array() {
		if !r.IsArray() {
			return nil, fmt.Errorf("%w: block %s row %d is not an array", ErrSchema, name, i)
		}
		row := r.Array()
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("%w: block %s row %d has %d cells, want %d",
				ErrSchema, name, i, len(row), len(t.Columns))
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Records flattens the table into one Record per row.
func (t *Table) Records() []Record {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i].Value()
		}
		records = append(records, rec)
	}
	return records
}

// Flatten is shorthand for doc.Table(block) followed by Records.
func Flatten(doc Document, block string) ([]Record, error) {
	t, err := doc.Table(block)
	if err != nil {
		return nil, err
	}
	return t.Records(), nil
}
