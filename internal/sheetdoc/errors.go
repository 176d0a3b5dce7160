package sheetdoc

import (
	"errors"
	"fmt"
)

// DocErrorCode categorizes document parse failures.
type DocErrorCode string

const (
	// ErrCodeMissingHeader indicates the input does not start with the
	// sheetdoc magic marker.
	ErrCodeMissingHeader DocErrorCode = "MISSING_HEADER"

	// ErrCodeUnsupportedVersion indicates a header with an unknown version
	// token.
	ErrCodeUnsupportedVersion DocErrorCode = "UNSUPPORTED_VERSION"

	// ErrCodeMalformedLine indicates a line that is neither a section
	// header nor a key/value assignment.
	ErrCodeMalformedLine DocErrorCode = "MALFORMED_LINE"

	// ErrCodeOrphanSection indicates a sheet-scoped section before any
	// [[sheets]] block.
	ErrCodeOrphanSection DocErrorCode = "ORPHAN_SECTION"

	// ErrCodeInvalidValue indicates a value literal that could not be
	// decoded.
	ErrCodeInvalidValue DocErrorCode = "INVALID_VALUE"
)

// DocError is a structured document parse error with a 1-based line number.
type DocError struct {
	Code    DocErrorCode
	Message string
	Line    int
}

// Error implements the error interface.
func (e *DocError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDocError reports whether err is (or wraps) a *DocError.
func IsDocError(err error) bool {
	var de *DocError
	return errors.As(err, &de)
}

func newDocError(code DocErrorCode, line int, format string, args ...any) *DocError {
	return &DocError{Code: code, Message: fmt.Sprintf(format, args...), Line: line}
}
