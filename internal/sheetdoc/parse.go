package sheetdoc

import (
	"strings"
)

// section identifies which block the parser is currently inside.
type section struct {
	kind string // "top", "sheet", "meta", "columns", "cells", "ranges", "dependencies"
	key  string // address or range key for keyed sections
}

// Parse decodes sheetdoc text into a document. The header line is
// mandatory; everything else is key/value blocks. Blank lines and comment
// lines are skipped.
func Parse(input string) (*Document, error) {
	lines := strings.Split(input, "\n")
	doc := &Document{}
	sec := section{kind: "top"}
	headerSeen := false

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}

		if !headerSeen {
			if !strings.HasPrefix(line, Magic) {
				return nil, newDocError(ErrCodeMissingHeader, lineNo, "expected %s header", Magic)
			}
			version := strings.TrimSpace(strings.TrimPrefix(line, Magic))
			if !supportedVersions[version] {
				return nil, newDocError(ErrCodeUnsupportedVersion, lineNo, "unsupported version %q", version)
			}
			doc.Version = version
			headerSeen = true
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			next, err := parseSectionHeader(line, lineNo, doc)
			if err != nil {
				return nil, err
			}
			sec = next
			continue
		}

		key, rest, ok := strings.Cut(line, "=")
		if !ok {
			return nil, newDocError(ErrCodeMalformedLine, lineNo, "expected key = value, got %q", line)
		}
		if err := assign(doc, sec, strings.TrimSpace(key), strings.TrimSpace(rest), lineNo); err != nil {
			return nil, err
		}
	}

	if !headerSeen {
		return nil, newDocError(ErrCodeMissingHeader, 0, "empty input")
	}
	return doc, nil
}

func parseSectionHeader(line string, lineNo int, doc *Document) (section, error) {
	if line == "[[sheets]]" {
		doc.Sheets = append(doc.Sheets, Sheet{
			Meta:         map[string]any{},
			Columns:      map[string]map[string]any{},
			Cells:        map[string]*CellRecord{},
			Ranges:       map[string]map[string]any{},
			Dependencies: map[string]*DependencyRecord{},
		})
		return section{kind: "sheet"}, nil
	}
	if !strings.HasPrefix(line, "[sheets.") || !strings.HasSuffix(line, "]") {
		return section{}, newDocError(ErrCodeMalformedLine, lineNo, "unrecognized section %q", line)
	}
	if len(doc.Sheets) == 0 {
		return section{}, newDocError(ErrCodeOrphanSection, lineNo, "section %q before any [[sheets]] block", line)
	}
	name := strings.TrimSuffix(strings.TrimPrefix(line, "[sheets."), "]")
	switch {
	case name == "meta":
		return section{kind: "meta"}, nil
	case name == "columns":
		return section{kind: "columns"}, nil
	case strings.HasPrefix(name, "cells."):
		return section{kind: "cells", key: strings.TrimPrefix(name, "cells.")}, nil
	case strings.HasPrefix(name, "ranges."):
		return section{kind: "ranges", key: strings.TrimPrefix(name, "ranges.")}, nil
	case strings.HasPrefix(name, "dependencies."):
		return section{kind: "dependencies", key: strings.TrimPrefix(name, "dependencies.")}, nil
	}
	return section{}, newDocError(ErrCodeMalformedLine, lineNo, "unrecognized section %q", line)
}

func assign(doc *Document, sec section, key, rest string, lineNo int) error {
	val, err := parseValue(rest, lineNo)
	if err != nil {
		return err
	}
	if sec.kind == "top" {
		if key == "page_id" {
			if s, ok := val.(string); ok {
				doc.PageID = s
			}
		}
		return nil
	}

	sh := &doc.Sheets[len(doc.Sheets)-1]
	switch sec.kind {
	case "sheet":
		switch key {
		case "name":
			if s, ok := val.(string); ok {
				sh.Name = s
			}
		case "order":
			if n, ok := val.(int); ok {
				sh.Order = n
			}
		}
	case "meta":
		sh.Meta[key] = val
	case "columns":
		attrs, ok := val.(map[string]any)
		if !ok {
			return newDocError(ErrCodeInvalidValue, lineNo, "column %q must be an inline table", key)
		}
		sh.Columns[key] = attrs
	case "cells":
		cell := sh.Cells[sec.key]
		if cell == nil {
			cell = &CellRecord{}
			sh.Cells[sec.key] = cell
		}
		assignCellField(cell, key, val)
	case "ranges":
		attrs := sh.Ranges[sec.key]
		if attrs == nil {
			attrs = map[string]any{}
			sh.Ranges[sec.key] = attrs
		}
		attrs[key] = val
	case "dependencies":
		rec := sh.Dependencies[sec.key]
		if rec == nil {
			rec = &DependencyRecord{}
			sh.Dependencies[sec.key] = rec
		}
		switch key {
		case "dependsOn":
			rec.DependsOn = toStringSlice(val)
		case "dependents":
			rec.Dependents = toStringSlice(val)
		}
	}
	return nil
}

func assignCellField(cell *CellRecord, key string, val any) {
	switch key {
	case "formula":
		if s, ok := val.(string); ok {
			cell.Formula = s
		}
	case "value":
		cell.Value = val
	case "type":
		if s, ok := val.(string); ok {
			cell.Type = s
		}
	case "notes":
		if s, ok := val.(string); ok {
			cell.Notes = s
		}
	case "error":
		if t, ok := val.(map[string]any); ok {
			cell.Error = errorFromTable(t)
		}
	}
}

func errorFromTable(t map[string]any) *ErrorRecord {
	rec := &ErrorRecord{}
	if s, ok := t["type"].(string); ok {
		rec.Type = s
	}
	if s, ok := t["message"].(string); ok {
		rec.Message = s
	}
	if d, ok := t["details"]; ok {
		rec.Details = toStringSlice(d)
	}
	return rec
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
