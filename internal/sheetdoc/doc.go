// Package sheetdoc implements the canonical textual persistence format for
// evaluated sheets. The format is deterministic: serializing the same
// logical sheet twice yields byte-identical text, which makes documents
// diff-friendly and safe to keep under version control.
package sheetdoc

import (
	"sort"
)

// Magic is the header marker every sheetdoc document starts with.
const Magic = "#%PAGESPACE_SHEETDOC"

// Version is the format version token written by this package.
const Version = "v1"

// supportedVersions lists the version tokens Parse accepts.
var supportedVersions = map[string]bool{"v1": true}

// Document is the persisted form of one or more sheets.
type Document struct {
	Version string
	PageID  string
	Sheets  []Sheet
}

// Sheet is one grid within a document.
type Sheet struct {
	Name         string
	Order        int
	Meta         map[string]any
	Columns      map[string]map[string]any
	Cells        map[string]*CellRecord
	Ranges       map[string]map[string]any
	Dependencies map[string]*DependencyRecord
}

// CellRecord is the persisted state of one cell. Formula is preserved
// verbatim with its leading '=' when the raw input was a formula;
// otherwise Value carries the typed literal. Type is omitted for empty
// cells.
type CellRecord struct {
	Formula string
	Value   any
	Type    string
	Notes   string
	Error   *ErrorRecord
}

// Error record types.
const (
	ErrorTypeCircular = "CIRCULAR_REF"
	ErrorTypeEval     = "EVAL_ERROR"
)

// ErrorRecord is the persisted form of a cell-level evaluation error. For
// circular references, Details lists the full cycle membership.
type ErrorRecord struct {
	Type    string
	Message string
	Details []string
}

// DependencyRecord stores both edge directions for one cell.
type DependencyRecord struct {
	DependsOn  []string
	Dependents []string
}

// sortSheets orders sheets by (order, name), the canonical document order.
func sortSheets(sheets []Sheet) {
	sort.SliceStable(sheets, func(i, j int) bool {
		if sheets[i].Order != sheets[j].Order {
			return sheets[i].Order < sheets[j].Order
		}
		return sheets[i].Name < sheets[j].Name
	})
}

// sortedKeys returns the keys of a map in lexicographic order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
