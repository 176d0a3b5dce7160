// Package workbook compiles CUE workbook definitions into page
// definitions ready for import. A workbook declares pages under the
// top-level "page" struct:
//
//	page: Budget: {
//		title: "Budget 2026"
//		sheet: {
//			rows:    20
//			columns: 10
//			cells: {
//				A1: "10"
//				A3: "=A1+A2"
//			}
//		}
//	}
package workbook

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/pagespace/sheetdoc/internal/sheet"
)

// PageDef is one compiled page definition.
type PageDef struct {
	Name    string
	Title   string
	Rows    int
	Columns int
	Cells   map[string]string
}

// SheetData materializes the page definition as a live grid.
func (p *PageDef) SheetData() *sheet.Data {
	rows, cols := p.Rows, p.Columns
	if rows == 0 {
		rows = sheet.DefaultRows
	}
	if cols == 0 {
		cols = sheet.DefaultColumns
	}
	data := sheet.NewSized(rows, cols)
	for addr, raw := range p.Cells {
		// addresses were validated at compile time
		_ = data.Set(addr, raw)
	}
	return data
}

// CompileWorkbook extracts every page definition from a built CUE value.
// Pages are returned in the order CUE iterates them (declaration order).
func CompileWorkbook(v cue.Value) ([]PageDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	pagesVal := v.LookupPath(cue.ParsePath("page"))
	if !pagesVal.Exists() {
		return nil, &CompileError{
			Field:   "page",
			Message: "workbook declares no pages",
			Pos:     v.Pos(),
		}
	}

	iter, err := pagesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var pages []PageDef
	for iter.Next() {
		page, err := compilePage(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}

	if len(pages) == 0 {
		return nil, &CompileError{
			Field:   "page",
			Message: "workbook declares no pages",
			Pos:     pagesVal.Pos(),
		}
	}
	return pages, nil
}

// compilePage parses a single page struct.
func compilePage(name string, v cue.Value) (*PageDef, error) {
	page := &PageDef{Name: name, Title: name, Cells: map[string]string{}}

	titleVal := v.LookupPath(cue.ParsePath("title"))
	if titleVal.Exists() {
		title, err := titleVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		page.Title = title
	}

	sheetVal := v.LookupPath(cue.ParsePath("sheet"))
	if !sheetVal.Exists() {
		return page, nil // a page without a sheet imports as an empty grid
	}

	var err error
	if page.Rows, err = optionalInt(sheetVal, "rows"); err != nil {
		return nil, err
	}
	if page.Columns, err = optionalInt(sheetVal, "columns"); err != nil {
		return nil, err
	}

	cellsVal := sheetVal.LookupPath(cue.ParsePath("cells"))
	if !cellsVal.Exists() {
		return page, nil
	}

	cellIter, err := cellsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for cellIter.Next() {
		addr := cellIter.Label()
		if !sheet.IsValidAddress(addr) {
			return nil, &CompileError{
				Field:   fmt.Sprintf("page.%s.sheet.cells.%s", name, addr),
				Message: "not a valid cell address",
				Pos:     cellIter.Value().Pos(),
			}
		}
		raw, err := cellText(cellIter.Value())
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("page.%s.sheet.cells.%s", name, addr),
				Message: err.Error(),
				Pos:     cellIter.Value().Pos(),
			}
		}
		page.Cells[addr] = raw
	}

	return page, nil
}

func optionalInt(v cue.Value, field string) (int, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return 0, nil
	}
	n, err := fieldVal.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// cellText converts a CUE cell value to raw cell text. Strings are taken
// verbatim (including formulas); numeric and boolean scalars become their
// literal text.
func cellText(v cue.Value) (string, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return "", err
		}
		if b {
			return "TRUE", nil
		}
		return "FALSE", nil
	}
	return "", fmt.Errorf("cell must be a string, number, or boolean, got %v", v.Kind())
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
