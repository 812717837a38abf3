package model

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for the two failure families of the ionogram core.
//
// Design decision: Callers branch on the family (errors.Is) while the typed
// errors below carry the location details. A format error aborts the open
// attempt; a domain error is recovered locally, usually by skipping one
// annotation point.
var (
	// ErrFormat is matched by every FormatError.
	ErrFormat = errors.New("invalid sounding format")

	// ErrDomain is matched by every DomainError.
	ErrDomain = errors.New("value outside transform domain")
)

// FormatError reports a structural problem in a sounding, sunspot or
// companion file.
type FormatError struct {
	// Path is the file being parsed, empty when parsing a plain reader.
	Path string
	// Line is the 1-based line number, 0 when the problem is not tied to a line.
	Line int
	// Reason describes what is wrong.
	Reason string
}

// NewFormatError creates a FormatError for the given line.
func NewFormatError(line int, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := ErrFormat.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Line > 0 {
		msg += ": line " + strconv.Itoa(e.Line)
	}
	return msg + ": " + e.Reason
}

// Unwrap allows errors.Is(err, ErrFormat).
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// WithPath returns err with Path set when err is a FormatError.
// Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		c := *fe
		c.Path = path
		return &c
	}
	return err
}

// DomainError reports an invalid input to the frequency/coordinate transform.
type DomainError struct {
	// Op is the transform that failed, e.g. "frequency to coordinate".
	Op string
	// Value is the offending input.
	Value float64
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s: %g", ErrDomain.Error(), e.Op, e.Value)
}

// Unwrap allows errors.Is(err, ErrDomain).
func (e *DomainError) Unwrap() error {
	return ErrDomain
}
