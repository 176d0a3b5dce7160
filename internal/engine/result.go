package engine

import (
	"sort"
	"strings"

	"github.com/pagespace/sheetdoc/internal/sheet"
)

// Result is the evaluated state of a single cell.
type Result struct {
	// Address is the canonical cell address.
	Address string

	// Raw is the cell text exactly as entered, including a leading '='
	// for formulas.
	Raw string

	// Value is the evaluated value; nil when Err is set.
	Value Value

	// Display is what the grid shows: the value's display form, or an
	// error marker.
	Display string

	// Type is the persisted type tag ("empty", "number", "string",
	// "boolean"); empty when Err is set.
	Type string

	// Err records the formula error, if any. Errors never escape the
	// cell boundary.
	Err *EvalError

	// DependsOn lists every reference this cell's formula reads, sorted.
	DependsOn []string

	// Dependents is the inverse edge set, populated only after a
	// full-sheet pass.
	Dependents []string
}

func (r *Result) setValue(v Value) {
	r.Value = v
	r.Display = v.Display()
	r.Type = v.Type()
}

func (r *Result) setError(err *EvalError) {
	r.Err = err
	r.Display = err.Display()
}

// IsFormula reports whether the cell's raw text is a formula.
func (r *Result) IsFormula() bool {
	return strings.HasPrefix(r.Raw, "=")
}

// SheetResult is the outcome of a full evaluation pass: the per-cell
// result table plus display and error matrices sized exactly
// RowCount×ColumnCount.
type SheetResult struct {
	Cells   map[string]*Result
	Display [][]string
	Errors  [][]string
}

// EvaluateSheet runs a full evaluation pass over every address in the
// declared row×column bounds of the sheet. The pass is pure and
// sequential: a fresh cache and ancestor set are allocated here and
// discarded on return, so concurrent passes over distinct snapshots are
// safe. The resolver may be nil, in which case every external reference
// records a page-unavailable error.
func EvaluateSheet(data *sheet.Data, resolver PageResolver) *SheetResult {
	work := data.Clone().Sanitize()
	ctx := newEvalContext(work, resolver)

	out := &SheetResult{
		Cells:   make(map[string]*Result, work.RowCount*work.ColumnCount),
		Display: make([][]string, work.RowCount),
		Errors:  make([][]string, work.RowCount),
	}

	for row := 0; row < work.RowCount; row++ {
		out.Display[row] = make([]string, work.ColumnCount)
		out.Errors[row] = make([]string, work.ColumnCount)
		for col := 0; col < work.ColumnCount; col++ {
			addr := sheet.EncodeAddress(row, col)
			r := ctx.evaluateCell("", addr)
			out.Cells[addr] = r
			out.Display[row][col] = r.Display
			if r.Err != nil {
				out.Errors[row][col] = r.Err.Message
			}
		}
	}

	deriveDependents(out.Cells)
	return out
}

// EvaluateCell evaluates a single cell with a fresh per-pass context.
// Dependents are not derived; that requires a full pass.
func EvaluateCell(data *sheet.Data, addr string, resolver PageResolver) *Result {
	work := data.Clone().Sanitize()
	ctx := newEvalContext(work, resolver)
	canon, err := sheet.CanonicalKey(addr)
	if err != nil {
		canon = addr
	}
	return ctx.evaluateCell("", canon)
}

// deriveDependents recomputes the inverse dependency edges from scratch:
// the dependents of X are exactly the cells whose dependsOn contains X.
// The sets are re-derived whole on every pass, never patched
// incrementally.
func deriveDependents(cells map[string]*Result) {
	for _, r := range cells {
		r.Dependents = nil
	}
	for _, r := range cells {
		for _, dep := range r.DependsOn {
			target, ok := cells[dep]
			if !ok {
				continue // external keys and out-of-bounds references
			}
			target.Dependents = append(target.Dependents, r.Address)
		}
	}
	for _, r := range cells {
		sort.Strings(r.Dependents)
	}
}
