/*
Package cqlmapper – error types.
*/
package cqlmapper

import "fmt"

// ErrorCode is a well-known error category string.
type ErrorCode string

const (
	// ErrShape reports malformed operator usage, detected before any cache
	// or metadata lookup (e.g. a non-slice value passed to In).
	ErrShape ErrorCode = "ShapeError"
	// ErrSelection reports that no physical table can satisfy the
	// requested filter / fields / order-by combination, or that no table
	// has full primary-key coverage for a mutation.
	ErrSelection ErrorCode = "SelectionError"
	// ErrConflict reports that a conditional mutation would have to span
	// more than one physical table.
	ErrConflict ErrorCode = "ConflictError"
	// ErrConstraint reports an invalid request: an UPDATE with nothing to
	// SET, When combined with IfExists, or an empty document.
	ErrConstraint ErrorCode = "ConstraintError"
	// ErrMetadata reports that table metadata could not be retrieved.
	ErrMetadata ErrorCode = "MetadataError"
	// ErrArgument reports invalid configuration or arguments.
	ErrArgument ErrorCode = "ArgumentError"
)

// MapperError is the general runtime error. It carries an optional Code and
// a free-form Context map for extra debugging data (offending column lists
// and similar diagnostics).
type MapperError struct {
	Message string
	Code    ErrorCode
	Context map[string]any
	Cause   error
}

func (e *MapperError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *MapperError) Unwrap() error { return e.Cause }

// NewError constructs a MapperError.
func NewError(msg string, opts ...func(*MapperError)) *MapperError {
	err := &MapperError{Message: msg}
	for _, o := range opts {
		o(err)
	}
	return err
}

// WithCode sets the error code.
func WithCode(c ErrorCode) func(*MapperError) {
	return func(e *MapperError) { e.Code = c }
}

// WithContext attaches a context map.
func WithContext(ctx map[string]any) func(*MapperError) {
	return func(e *MapperError) { e.Context = ctx }
}

// WithCause wraps an underlying error.
func WithCause(cause error) func(*MapperError) {
	return func(e *MapperError) { e.Cause = cause }
}

// MapperArgError is for invalid argument / configuration errors.
type MapperArgError struct {
	Message string
	Code    ErrorCode
}

func (e *MapperArgError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

// NewArgError constructs a MapperArgError.
func NewArgError(msg string, code ...ErrorCode) *MapperArgError {
	c := ErrArgument
	if len(code) > 0 {
		c = code[0]
	}
	return &MapperArgError{Message: msg, Code: c}
}

// HasCode reports whether err is a mapper error carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case *MapperError:
		return e.Code == code
	case *MapperArgError:
		return e.Code == code
	}
	return false
}
