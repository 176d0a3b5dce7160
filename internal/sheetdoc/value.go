package sheetdoc

import (
	"fmt"
	"strconv"
	"strings"
)

// renderValue encodes a Go value as a sheetdoc value literal. Maps render
// as inline tables with sorted keys so the encoding is deterministic.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return `""`
	case string:
		return quoteString(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		parts := make([]string, len(val))
		for i, s := range val {
			parts[i] = quoteString(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = renderValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		if len(val) == 0 {
			return "{}"
		}
		parts := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			parts = append(parts, k+" = "+renderValue(val[k]))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return quoteString(fmt.Sprint(v))
}

// quoteString wraps s in double quotes, escaping backslash, the quote
// itself, and newlines so every value stays on one physical line.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// parseValue decodes a sheetdoc value literal: a quoted string, boolean,
// number, array, or inline table.
func parseValue(s string, line int) (any, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, newDocError(ErrCodeInvalidValue, line, "empty value")
	case s[0] == '"':
		return unquoteString(s, line)
	case s == "true":
		return true, nil
	case s == "false":
		return false, nil
	case s[0] == '[':
		return parseArray(s, line)
	case s[0] == '{':
		return parseInlineTable(s, line)
	}
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(n), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return nil, newDocError(ErrCodeInvalidValue, line, "cannot decode value %q", s)
}

func unquoteString(s string, line int) (string, error) {
	if len(s) < 2 || s[len(s)-1] != '"' {
		return "", newDocError(ErrCodeInvalidValue, line, "unterminated string %q", s)
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(body))
	escaped := false
	for _, r := range body {
		if escaped {
			switch r {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			default:
				return "", newDocError(ErrCodeInvalidValue, line, "unknown escape \\%c", r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == '"' {
			return "", newDocError(ErrCodeInvalidValue, line, "unescaped quote in %q", s)
		}
		b.WriteRune(r)
	}
	if escaped {
		return "", newDocError(ErrCodeInvalidValue, line, "dangling escape in %q", s)
	}
	return b.String(), nil
}

func parseArray(s string, line int) ([]any, error) {
	if s[len(s)-1] != ']' {
		return nil, newDocError(ErrCodeInvalidValue, line, "unterminated array %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return []any{}, nil
	}
	parts, err := splitTopLevel(body, line)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := parseValue(p, line)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseInlineTable(s string, line int) (map[string]any, error) {
	if s[len(s)-1] != '}' {
		return nil, newDocError(ErrCodeInvalidValue, line, "unterminated table %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	out := map[string]any{}
	if body == "" {
		return out, nil
	}
	parts, err := splitTopLevel(body, line)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		key, rest, ok := strings.Cut(p, "=")
		if !ok {
			return nil, newDocError(ErrCodeInvalidValue, line, "table entry %q has no '='", p)
		}
		v, err := parseValue(rest, line)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(key)] = v
	}
	return out, nil
}

// splitTopLevel splits on commas that are outside quotes, brackets, and
// braces.
func splitTopLevel(s string, line int) ([]string, error) {
	var parts []string
	depth := 0
	inString := false
	escaped := false
	start := 0
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if inString || depth != 0 {
		return nil, newDocError(ErrCodeInvalidValue, line, "unbalanced value %q", s)
	}
	parts = append(parts, s[start:])
	return parts, nil
}
