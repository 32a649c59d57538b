// ABOUTME: Container error kinds
// ABOUTME: Sentinel errors and positioned syntax errors for the text format
package container

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrCorruptContainer = errors.New("corrupt container")
	ErrTruncatedData    = errors.New("truncated data")
	ErrInvalidHeader    = errors.New("invalid header")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrMalformedToken   = errors.New("malformed token")
)

// SyntaxError locates a text container failure. Err is one of the sentinel kinds.
type SyntaxError struct {
	Err    error
	Line   int
	Column int
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("%v at line %d, column %d: %s", e.Err, e.Line, e.Column, e.Detail)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxErr(kind error, pos Pos, format string, args ...any) error {
	return &SyntaxError{
		Err:    kind,
		Line:   pos.Line,
		Column: pos.Column,
		Detail: fmt.Sprintf(format, args...),
	}
}
