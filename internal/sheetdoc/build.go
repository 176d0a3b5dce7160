package sheetdoc

import (
	"strconv"
	"strings"

	"github.com/pagespace/sheetdoc/internal/engine"
	"github.com/pagespace/sheetdoc/internal/sheet"
)

// DefaultSheetName names the single grid a live sheet serializes as.
const DefaultSheetName = "Sheet1"

// Serialize evaluates a sheet and renders it as canonical sheetdoc text.
// pageID may be empty for documents not bound to a page. The resolver may
// be nil; external references then persist as page-unavailable errors.
func Serialize(data *sheet.Data, resolver engine.PageResolver, pageID string) string {
	return Render(BuildDocument(data, resolver, pageID))
}

// BuildDocument runs a full evaluation pass and projects the results into
// a persistable document: raw formulas verbatim, literals as typed values,
// per-cell error records, and both dependency edge directions.
func BuildDocument(data *sheet.Data, resolver engine.PageResolver, pageID string) *Document {
	work := data.Clone().Sanitize()
	out := engine.EvaluateSheet(work, resolver)

	sh := Sheet{
		Name:  DefaultSheetName,
		Order: 0,
		Meta: map[string]any{
			"columnCount": work.ColumnCount,
			"rowCount":    work.RowCount,
		},
		Cells:        map[string]*CellRecord{},
		Dependencies: map[string]*DependencyRecord{},
	}

	for addr, r := range out.Cells {
		if rec := cellRecord(r); rec != nil {
			sh.Cells[addr] = rec
		}
		if len(r.DependsOn) > 0 || len(r.Dependents) > 0 {
			sh.Dependencies[addr] = &DependencyRecord{
				DependsOn:  orEmpty(r.DependsOn),
				Dependents: orEmpty(r.Dependents),
			}
		}
	}

	return &Document{
		Version: Version,
		PageID:  pageID,
		Sheets:  []Sheet{sh},
	}
}

// cellRecord projects one evaluated cell, or nil when the cell is empty
// and has nothing to persist.
func cellRecord(r *engine.Result) *CellRecord {
	if r.Raw == "" {
		return nil
	}
	rec := &CellRecord{}
	if r.IsFormula() {
		rec.Formula = r.Raw
	}
	if r.Err != nil {
		rec.Error = &ErrorRecord{
			Type:    errorType(r.Err),
			Message: r.Err.Message,
			Details: r.Err.Details,
		}
		return rec
	}
	rec.Type = r.Type
	rec.Value = recordValue(r.Value)
	return rec
}

func errorType(err *engine.EvalError) string {
	if err.Code == engine.ErrCodeCircularReference {
		return ErrorTypeCircular
	}
	return ErrorTypeEval
}

// recordValue converts an engine value into the persisted representation.
func recordValue(v engine.Value) any {
	switch val := v.(type) {
	case engine.Number:
		return float64(val)
	case engine.String:
		return string(val)
	case engine.Bool:
		return bool(val)
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ToSheetData converts a parsed document back into the live grid model.
// Only the first sheet in canonical order is loaded; additional sheets are
// ignored. Formulas are restored verbatim; typed values are restored as
// literal cell text.
func ToSheetData(doc *Document) *sheet.Data {
	if len(doc.Sheets) == 0 {
		return sheet.New()
	}
	sheets := make([]Sheet, len(doc.Sheets))
	copy(sheets, doc.Sheets)
	sortSheets(sheets)
	first := &sheets[0]

	rows := metaInt(first.Meta, "rowCount", sheet.DefaultRows)
	cols := metaInt(first.Meta, "columnCount", sheet.DefaultColumns)
	data := sheet.NewSized(rows, cols)

	for addr, cell := range first.Cells {
		raw := cell.Formula
		if raw == "" {
			raw = literalText(cell.Value)
		}
		if raw == "" {
			continue
		}
		// invalid persisted addresses are dropped, matching Sanitize
		_ = data.Set(addr, raw)
	}
	return data.Sanitize()
}

func metaInt(meta map[string]any, key string, fallback int) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// literalText renders a persisted typed value as raw cell text.
func literalText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}

// ParseSheetContent loads stored page content in any of the accepted
// shapes: sheetdoc text, the JSON interchange shape, or anything else.
// It never fails; unreadable content degrades to an empty default sheet.
func ParseSheetContent(input string) *sheet.Data {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return sheet.New()
	}
	if strings.HasPrefix(trimmed, Magic) {
		doc, err := Parse(input)
		if err != nil {
			return sheet.New()
		}
		return ToSheetData(doc)
	}
	if data, err := sheet.FromJSON([]byte(input)); err == nil {
		return data
	}
	return sheet.New()
}
