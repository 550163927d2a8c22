package trail

import (
	"fmt"
	"strings"
)

// Error codes for trail operations.
const (
	ErrCodeInvalidStep       = "INVALID_STEP"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeContractViolation = "CONTRACT_VIOLATION"
	ErrCodeStepExecution     = "STEP_EXECUTION"
)

// Sentinel errors for use with errors.Is. Matching is by code only.
var (
	ErrInvalidStep       = &Error{Code: ErrCodeInvalidStep, Message: "invalid step"}
	ErrDuplicateName     = &Error{Code: ErrCodeDuplicateName, Message: "duplicate step name"}
	ErrNotFound          = &Error{Code: ErrCodeNotFound, Message: "step not found"}
	ErrContractViolation = &Error{Code: ErrCodeContractViolation, Message: "footprint contract violated"}
	ErrStepExecution     = &Error{Code: ErrCodeStepExecution, Message: "step execution failed"}
)

// Error is returned by every trail operation.
type Error struct {
	Code       string // Error code for categorization
	Op         string // Trail operation, e.g. "insert_before"
	Step       string // Step name if applicable
	Index      int    // Step position for STEP_EXECUTION, -1 otherwise
	Message    string // Human-readable message
	Suggestion string // Actionable hint
	Underlying error  // Original failure
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Step != "" {
		if e.Index >= 0 && e.Code == ErrCodeStepExecution {
			parts = append(parts, fmt.Sprintf("step %q (index %d)", e.Step, e.Index))
		} else {
			parts = append(parts, fmt.Sprintf("step %q", e.Step))
		}
	}

	msg := e.Message
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("%s: %s", strings.Join(parts, ", "), msg)
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() by comparing codes.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a multi-line rendering with all details.
func (e *Error) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Op != "" {
		fmt.Fprintf(&b, "\n  Operation: %s", e.Op)
	}
	if e.Step != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.Step)
	}
	if e.Code == ErrCodeStepExecution && e.Index >= 0 {
		fmt.Fprintf(&b, "\n  Index: %d", e.Index)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}
	return b.String()
}

func newInvalidStepError(name, message string) *Error {
	return &Error{
		Code:       ErrCodeInvalidStep,
		Op:         "new_step",
		Step:       name,
		Index:      -1,
		Message:    message,
		Suggestion: "A step body must accept one footprint and return one footprint (optionally with an error), and carry a non-empty name.",
	}
}

func newDuplicateNameError(op, name string) *Error {
	return &Error{
		Code:       ErrCodeDuplicateName,
		Op:         op,
		Step:       name,
		Index:      -1,
		Message:    "a step with this name is already part of the trail",
		Suggestion: "Give the step a unique name with WithName, or remove the existing step first.",
	}
}

func newNotFoundError(op, name string) *Error {
	return &Error{
		Code:       ErrCodeNotFound,
		Op:         op,
		Step:       name,
		Index:      -1,
		Message:    "no step with this name in the trail",
		Suggestion: "Check Names() for the current step names.",
	}
}

func newContractViolationError(op, message string) *Error {
	return &Error{
		Code:       ErrCodeContractViolation,
		Op:         op,
		Index:      -1,
		Message:    message,
		Suggestion: "Metadata() must return the same ledger for the lifetime of the footprint; allocate it once (see NewBase).",
	}
}

func newStepExecutionError(name string, index int, err error) *Error {
	return &Error{
		Code:       ErrCodeStepExecution,
		Op:         "execute",
		Step:       name,
		Index:      index,
		Message:    "step failed",
		Underlying: err,
	}
}
