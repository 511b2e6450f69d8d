package docxedit

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel errors. Every failure returned by this package matches exactly one
// of them with errors.Is.
var (
	ErrNotFound        = fmt.Errorf("not found: %w", os.ErrNotExist)
	ErrFormat          = errors.New("format error")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrIO              = errors.New("io error")
)

// DocumentError represents an error during a package operation.
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("%s %s", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
	}
	return e.Operation
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// formatErr wraps cause (which may be nil) so that it matches ErrFormat.
func formatErr(operation, path string, cause error) error {
	if cause == nil {
		return NewDocumentError(operation, path, ErrFormat)
	}
	return NewDocumentError(operation, path, fmt.Errorf("%w: %v", ErrFormat, cause))
}

// notFoundErr reports a missing file or part.
func notFoundErr(operation, path string) error {
	return NewDocumentError(operation, path, ErrNotFound)
}

// ioErr wraps a filesystem or archive write failure so that it matches ErrIO.
func ioErr(operation, path string, cause error) error {
	return NewDocumentError(operation, path, fmt.Errorf("%w: %v", ErrIO, cause))
}

// IndexError reports a positional index with no corresponding element.
type IndexError struct {
	What  string
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range (have %d)", e.What, e.Index, e.Count)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors.
func (m *MultiError) Errors() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// IsNotFound reports whether err is a missing file, part or element.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFormatError reports whether err is a malformed or unexpected XML error.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsIndexOutOfRange reports whether err is a positional index error.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}
