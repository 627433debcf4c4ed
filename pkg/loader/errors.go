package loader

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a load failure by the stage that produced it.
type Kind string

const (
	// KindIO indicates the description file could not be read.
	// Examples: not found, permission denied, path is a directory.
	KindIO Kind = "io"

	// KindParse indicates the bytes are not valid in the selected format,
	// or no format is registered for the file extension.
	KindParse Kind = "parse"

	// KindValidation indicates the document parsed but its content is not a
	// valid MCU description.
	KindValidation Kind = "validation"
)

// Reason is a machine-readable code for a validation finding.
type Reason string

const (
	ReasonMissingField    Reason = "MissingField"
	ReasonEmptyField      Reason = "EmptyField"
	ReasonInvalidType     Reason = "InvalidType"
	ReasonDuplicatePin    Reason = "DuplicatePin"
	ReasonInvalidValue    Reason = "InvalidValue"
	ReasonSchemaViolation Reason = "SchemaViolation"
)

// Finding is one validation problem located in the description.
type Finding struct {
	// Field is the path of the offending value, e.g. "pins[3].name".
	Field string `json:"field"`

	// Reason is the finding code.
	Reason Reason `json:"reason"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Line and Column locate the value, when the format supplies positions.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// String formats the finding as "line:col: field: message".
func (f Finding) String() string {
	var b strings.Builder
	if f.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", f.Line, f.Column)
	}
	if f.Field != "" {
		b.WriteString(f.Field)
		b.WriteString(": ")
	}
	b.WriteString(f.Message)
	return b.String()
}

// Error is the typed failure returned by Load.
// nolint:revive // loader.Error reads naturally at call sites
type Error struct {
	// Kind is the failure class.
	Kind Kind `json:"kind"`

	// Path is the path passed to Load.
	Path string `json:"path,omitempty"`

	// File is the file name reported by the format, when it differs from Path.
	File string `json:"file,omitempty"`

	// Line and Column locate the primary failure, when known.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`

	// Field is the path of the offending value for validation failures.
	Field string `json:"field,omitempty"`

	// Reason is the code of the primary validation finding.
	Reason Reason `json:"reason,omitempty"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`

	// Findings holds every validation finding in declaration order.
	Findings []Finding `json:"findings,omitempty"`
}

// Sentinels for errors.Is matching by kind.
var (
	ErrIO         = &Error{Kind: KindIO}
	ErrParse      = &Error{Kind: KindParse}
	ErrValidation = &Error{Kind: KindValidation}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Kind)

	location := e.Path
	if location == "" {
		location = e.File
	}
	if location != "" {
		b.WriteString(location)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
		}
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}

	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil && e.Kind == KindIO {
		msg = msg + ": " + e.Err.Error()
	}
	b.WriteString(msg)

	if n := len(e.Findings); n > 1 {
		fmt.Fprintf(&b, " (and %d more)", n-1)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target with a
// reason additionally requires the same reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Reason == "" || e.Reason == t.Reason
}

// ReasonError returns a sentinel matching validation errors with the given reason.
func ReasonError(reason Reason) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

// newIOError creates an io error for path.
func newIOError(path string, err error) *Error {
	return &Error{
		Kind:    KindIO,
		Path:    path,
		Message: "failed to read description",
		Err:     err,
	}
}

// newParseError creates a parse error located in file.
func newParseError(file string, line, column int, message string, err error) *Error {
	return &Error{
		Kind:    KindParse,
		File:    file,
		Line:    line,
		Column:  column,
		Message: message,
		Err:     err,
	}
}

// newValidationError creates a validation error whose primary finding is the first.
func newValidationError(file string, findings []Finding) *Error {
	e := &Error{
		Kind:     KindValidation,
		File:     file,
		Findings: findings,
	}
	if len(findings) > 0 {
		first := findings[0]
		e.Field = first.Field
		e.Reason = first.Reason
		e.Message = first.Message
		e.Line = first.Line
		e.Column = first.Column
	}
	return e
}

// withPath sets the load path on err if it is an *Error.
func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
		if e.File == path {
			e.File = ""
		}
	}
	return err
}

// IsIO returns true if the error is an io failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsParse returns true if the error is a parse failure.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ReasonOf returns the primary reason of a validation error, or "".
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// KindOf returns the kind of a load error, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
