package sheet

import (
	"encoding/json"
	"fmt"
)

// Default grid dimensions for a freshly created sheet.
const (
	DefaultRows    = 20
	DefaultColumns = 10
)

// CurrentVersion is the sheet data model version written by this package.
const CurrentVersion = 1

// Data is the in-memory grid: a sparse map from canonical address keys to
// raw cell text. A key absent from Cells means the cell is empty. Raw text
// beginning with '=' is a formula; anything else is a literal.
type Data struct {
	Version     int               `json:"version"`
	RowCount    int               `json:"rowCount"`
	ColumnCount int               `json:"columnCount"`
	Cells       map[string]string `json:"cells"`
}

// New creates an empty sheet with the default dimensions.
func New() *Data {
	return NewSized(DefaultRows, DefaultColumns)
}

// NewSized creates an empty sheet with the given dimensions. Dimensions
// below 1 are clamped to 1.
func NewSized(rows, cols int) *Data {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &Data{
		Version:     CurrentVersion,
		RowCount:    rows,
		ColumnCount: cols,
		Cells:       make(map[string]string),
	}
}

// Set replaces the raw text of a cell. The address is canonicalized; an
// unparseable address is reported as an error and the grid is unchanged.
func (d *Data) Set(addr, raw string) error {
	key, err := CanonicalKey(addr)
	if err != nil {
		return err
	}
	if d.Cells == nil {
		d.Cells = make(map[string]string)
	}
	d.Cells[key] = raw
	return nil
}

// Get returns the raw text of a cell, or "" when the cell is empty.
// Address lookup is case-insensitive.
func (d *Data) Get(addr string) string {
	key, err := CanonicalKey(addr)
	if err != nil {
		return ""
	}
	return d.Cells[key]
}

// Sanitize normalizes the grid in place: dimensions are clamped to at
// least 1, cell keys are canonicalized to uppercase, and any key that is
// not a syntactically valid address is dropped. Returns the receiver for
// chaining.
func (d *Data) Sanitize() *Data {
	if d.RowCount < 1 {
		d.RowCount = 1
	}
	if d.ColumnCount < 1 {
		d.ColumnCount = 1
	}
	clean := make(map[string]string, len(d.Cells))
	for key, raw := range d.Cells {
		canon, err := CanonicalKey(key)
		if err != nil {
			continue
		}
		clean[canon] = raw
	}
	d.Cells = clean
	return d
}

// FromJSON parses the JSON interchange shape
// {version,rowCount,columnCount,cells:{ADDR:string}} and sanitizes the
// result. Unknown fields are ignored.
func FromJSON(input []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(input, &d); err != nil {
		return nil, fmt.Errorf("parse sheet JSON: %w", err)
	}
	if d.Cells == nil {
		d.Cells = make(map[string]string)
	}
	if d.Version == 0 {
		d.Version = CurrentVersion
	}
	return d.Sanitize(), nil
}

// ToJSON renders the sheet in the JSON interchange shape.
func (d *Data) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// Clone returns a deep copy of the sheet.
func (d *Data) Clone() *Data {
	cells := make(map[string]string, len(d.Cells))
	for k, v := range d.Cells {
		cells[k] = v
	}
	return &Data{
		Version:     d.Version,
		RowCount:    d.RowCount,
		ColumnCount: d.ColumnCount,
		Cells:       cells,
	}
}
