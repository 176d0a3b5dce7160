package engine

import (
	"errors"
	"fmt"
)

// Display markers for errored cells. Circular references display
// distinctly so a cycle is recognizable at a glance in the grid.
const (
	ErrorDisplay = "#ERROR"
	CycleDisplay = "#CYCLE"
)

// EvalErrorCode categorizes runtime formula errors.
type EvalErrorCode string

const (
	// ErrCodeDivisionByZero indicates '/' with a right operand of exactly 0.
	ErrCodeDivisionByZero EvalErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeNotNumeric indicates a value that failed numeric coercion.
	ErrCodeNotNumeric EvalErrorCode = "NOT_NUMERIC"

	// ErrCodeUnsupportedFunction indicates an unknown function name.
	ErrCodeUnsupportedFunction EvalErrorCode = "UNSUPPORTED_FUNCTION"

	// ErrCodeArgumentCount indicates a call with the wrong number of arguments.
	ErrCodeArgumentCount EvalErrorCode = "ARGUMENT_COUNT"

	// ErrCodeZeroSignificance indicates FLOOR/CEILING with significance 0.
	ErrCodeZeroSignificance EvalErrorCode = "ZERO_SIGNIFICANCE"

	// ErrCodeRangeNotAllowed indicates a range used where a single value is
	// required, such as an operator operand.
	ErrCodeRangeNotAllowed EvalErrorCode = "RANGE_NOT_ALLOWED"

	// ErrCodeCircularReference indicates evaluation re-entered a cell that is
	// already on the active recursion path.
	ErrCodeCircularReference EvalErrorCode = "CIRCULAR_REF"

	// ErrCodePageUnavailable indicates the external-page resolver returned
	// nothing or an error for a mention.
	ErrCodePageUnavailable EvalErrorCode = "PAGE_UNAVAILABLE"

	// ErrCodeParse wraps a lexical or syntactic error at the cell boundary.
	ErrCodeParse EvalErrorCode = "PARSE_ERROR"
)

// EvalError is a runtime formula error. It is caught at the per-cell
// boundary and recorded on that cell's result; it never propagates to
// sibling cells or to the caller of EvaluateSheet.
type EvalError struct {
	Code    EvalErrorCode
	Message string

	// Details carries extra context; for circular references it is the
	// full cycle membership.
	Details []string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Display returns the grid marker for this error.
func (e *EvalError) Display() string {
	if e.Code == ErrCodeCircularReference {
		return CycleDisplay
	}
	return ErrorDisplay
}

// IsCircular reports whether err is (or wraps) a circular-reference error.
func IsCircular(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeCircularReference
	}
	return false
}

func newEvalError(code EvalErrorCode, format string, args ...any) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// newCircularError records the cycle membership for diagnostics and for
// the persisted error record.
func newCircularError(cycle []string) *EvalError {
	return &EvalError{
		Code:    ErrCodeCircularReference,
		Message: "Circular reference detected",
		Details: cycle,
	}
}
