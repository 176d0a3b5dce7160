package engine

import (
	"math"
	"strconv"
	"strings"
)

// Value is the sealed interface over cell values. Only Empty, Number,
// String, and Bool implement it; there is no error case — evaluation
// failures travel as *EvalError, never as values.
type Value interface {
	value()

	// Display renders the value the way the grid shows it.
	Display() string

	// Type returns the persisted type tag: "empty", "number", "string",
	// or "boolean".
	Type() string
}

// Empty is the value of a cell with no content. It coerces to 0 and false.
type Empty struct{}

// Number is a numeric cell value.
type Number float64

// String is a text cell value.
type String string

// Bool is a boolean cell value.
type Bool bool

func (Empty) value()  {}
func (Number) value() {}
func (String) value() {}
func (Bool) value()   {}

func (Empty) Display() string { return "" }
func (Empty) Type() string    { return "empty" }

func (n Number) Display() string { return formatNumber(float64(n)) }
func (Number) Type() string      { return "number" }

func (s String) Display() string { return string(s) }
func (String) Type() string      { return "string" }

func (b Bool) Display() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
func (Bool) Type() string { return "boolean" }

// displayPrecision caps the rendered width of a number: values whose plain
// decimal form is longer than this are re-rendered at this many fractional
// digits and trimmed.
const displayPrecision = 12

// formatNumber renders a float as plain decimal text. Non-finite values
// display as the generic error marker since the grid has no NaN/Inf
// representation.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorDisplay
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if len(s) <= displayPrecision {
		return s
	}
	s = strconv.FormatFloat(v, 'f', displayPrecision, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// CoerceNumber converts a value to a float64: empty is 0, booleans are
// 0/1, strings are trimmed and parsed. A non-empty unparseable string is a
// NOT_NUMERIC error.
func CoerceNumber(v Value) (float64, *EvalError) {
	switch val := v.(type) {
	case Empty:
		return 0, nil
	case Number:
		return float64(val), nil
	case Bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case String:
		trimmed := strings.TrimSpace(string(val))
		if trimmed == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, newEvalError(ErrCodeNotNumeric, "value %q is not numeric", string(val))
		}
		return f, nil
	}
	return 0, newEvalError(ErrCodeNotNumeric, "value is not numeric")
}

// CoerceBool converts a value to a boolean. Empty is false, numbers are
// non-zero, "TRUE"/"FALSE" strings (any case) are literal, numeric strings
// follow the number rule, and any other non-empty string is truthy.
func CoerceBool(v Value) bool {
	switch val := v.(type) {
	case Empty:
		return false
	case Bool:
		return bool(val)
	case Number:
		return float64(val) != 0
	case String:
		switch strings.ToUpper(strings.TrimSpace(string(val))) {
		case "TRUE":
			return true
		case "FALSE", "":
			return false
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64); err == nil {
			return f != 0
		}
		return true
	}
	return false
}

// LiteralValue types the raw text of a non-formula cell: numeric text
// becomes a number, TRUE/FALSE becomes a boolean, everything else stays a
// string. Empty text is the empty value.
func LiteralValue(raw string) Value {
	if raw == "" {
		return Empty{}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Number(f)
		}
		switch strings.ToUpper(trimmed) {
		case "TRUE":
			return Bool(true)
		case "FALSE":
			return Bool(false)
		}
	}
	return String(raw)
}
