package sheetdoc

import (
	"strconv"
	"strings"
)

// Render encodes a document as canonical sheetdoc text. The encoding is
// total: every block's keys are emitted in lexicographic order, sheets in
// (order, name) order, so two documents with the same logical content
// render to identical bytes.
func Render(doc *Document) string {
	var b strings.Builder
	b.WriteString(Magic)
	b.WriteByte(' ')
	if doc.Version != "" {
		b.WriteString(doc.Version)
	} else {
		b.WriteString(Version)
	}
	b.WriteByte('\n')
	if doc.PageID != "" {
		b.WriteString("page_id = " + quoteString(doc.PageID) + "\n")
	}

	sheets := make([]Sheet, len(doc.Sheets))
	copy(sheets, doc.Sheets)
	sortSheets(sheets)

	for i := range sheets {
		b.WriteByte('\n')
		renderSheet(&b, &sheets[i])
	}
	return b.String()
}

func renderSheet(b *strings.Builder, s *Sheet) {
	b.WriteString("[[sheets]]\n")
	b.WriteString("name = " + quoteString(s.Name) + "\n")
	b.WriteString("order = " + strconv.Itoa(s.Order) + "\n")

	if len(s.Meta) > 0 {
		b.WriteString("\n[sheets.meta]\n")
		for _, k := range sortedKeys(s.Meta) {
			b.WriteString(k + " = " + renderValue(s.Meta[k]) + "\n")
		}
	}

	if len(s.Columns) > 0 {
		b.WriteString("\n[sheets.columns]\n")
		for _, k := range sortedKeys(s.Columns) {
			b.WriteString(k + " = " + renderValue(s.Columns[k]) + "\n")
		}
	}

	for _, addr := range sortedKeys(s.Cells) {
		b.WriteString("\n[sheets.cells." + addr + "]\n")
		renderCell(b, s.Cells[addr])
	}

	for _, key := range sortedKeys(s.Ranges) {
		b.WriteString("\n[sheets.ranges." + key + "]\n")
		attrs := s.Ranges[key]
		for _, k := range sortedKeys(attrs) {
			b.WriteString(k + " = " + renderValue(attrs[k]) + "\n")
		}
	}

	for _, addr := range sortedKeys(s.Dependencies) {
		rec := s.Dependencies[addr]
		b.WriteString("\n[sheets.dependencies." + addr + "]\n")
		b.WriteString("dependsOn = " + renderValue(rec.DependsOn) + "\n")
		b.WriteString("dependents = " + renderValue(rec.Dependents) + "\n")
	}
}

// renderCell writes the cell record fields in lexicographic key order:
// error, formula, notes, type, value.
func renderCell(b *strings.Builder, c *CellRecord) {
	if c.Error != nil {
		b.WriteString("error = " + renderValue(errorTable(c.Error)) + "\n")
	}
	if c.Formula != "" {
		b.WriteString("formula = " + quoteString(c.Formula) + "\n")
	}
	if c.Notes != "" {
		b.WriteString("notes = " + quoteString(c.Notes) + "\n")
	}
	if c.Type != "" {
		b.WriteString("type = " + quoteString(c.Type) + "\n")
	}
	if c.Value != nil {
		b.WriteString("value = " + renderValue(c.Value) + "\n")
	}
}

func errorTable(e *ErrorRecord) map[string]any {
	t := map[string]any{
		"message": e.Message,
		"type":    e.Type,
	}
	if len(e.Details) > 0 {
		t["details"] = e.Details
	}
	return t
}
