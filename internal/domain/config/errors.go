package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound          = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse             = "CONFIG_PARSE"
	ErrCodeConfigInvalid           = "CONFIG_INVALID"
	ErrCodeConfigUnsupportedFormat = "CONFIG_UNSUPPORTED_FORMAT"
)

// UserError represents a user-facing settings error with an actionable suggestion.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path or settings field
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

// ErrorList accumulates validation errors so all of them are reported at once.
type ErrorList struct {
	errors []*UserError
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddInvalid adds a CONFIG_INVALID error for a field.
func (l *ErrorList) AddInvalid(field, message, suggestion string) {
	l.Add(&UserError{
		Code:       ErrCodeConfigInvalid,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns a copy of the collected errors.
func (l *ErrorList) Errors() []*UserError {
	result := make([]*UserError, len(l.errors))
	copy(result, l.errors)
	return result
}

// Error implements the error interface.
func (l *ErrorList) Error() string {
	switch len(l.errors) {
	case 0:
		return ""
	case 1:
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Format returns a detailed formatted output of all errors.
func (l *ErrorList) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n--- Error %d ---\n", i+1)
		b.WriteString(err.Format())
		b.WriteString("\n")
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	errs := make([]error, len(l.errors))
	for i, err := range l.errors {
		errs[i] = err
	}
	return errs
}

// AsError returns the list as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l
}

// NewConfigNotFoundError creates an error for a missing settings file.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("settings file not found: %s", path),
		Context:    path,
		Suggestion: "Check the --config path, or omit it to run with defaults.",
	}
}

// NewConfigParseError creates an error for a settings file that cannot be decoded.
func NewConfigParseError(path, format string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    fmt.Sprintf("invalid %s syntax", format),
		Context:    lineContext(path, err),
		Suggestion: fmt.Sprintf("Check the %s syntax and that every key is one of: name, run_id, tags, trace, disabled, logging.", format),
		Underlying: err,
	}
}

// NewUnsupportedFormatError creates an error for an unknown file extension.
func NewUnsupportedFormatError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigUnsupportedFormat,
		Message:    "unsupported settings file format",
		Context:    path,
		Suggestion: "Use a .yaml, .yml or .toml file.",
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// lineContext appends the line number reported by the decoder, if any.
func lineContext(path string, err error) string {
	if err == nil {
		return path
	}
	msg := err.Error()
	idx := strings.Index(msg, "line ")
	if idx < 0 {
		return path
	}
	rest := msg[idx+len("line "):]
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return path
	}
	if end > 0 {
		rest = rest[:end]
	}
	if path == "" {
		return "line " + rest
	}
	return fmt.Sprintf("%s (line %s)", path, rest)
}
