package trail

import "strings"

// Outcome tags the result of a single step invocation.
type Outcome string

const (
	// OutcomeSuccess marks a step that returned a footprint without error.
	OutcomeSuccess Outcome = "success"
	// OutcomePlanned marks a step that a dry-run would have invoked.
	OutcomePlanned Outcome = "planned"

	failedPrefix = "failed"
)

// Failed returns the outcome for a step that failed with the given reason.
// Newlines are folded so the outcome stays a single line.
func Failed(reason string) Outcome {
	reason = strings.Join(strings.Fields(reason), " ")
	if reason == "" {
		return Outcome(failedPrefix)
	}
	return Outcome(failedPrefix + ":" + reason)
}

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// IsSuccess reports whether the step completed.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess
}

// IsPlanned reports whether the record comes from a dry-run.
func (o Outcome) IsPlanned() bool {
	return o == OutcomePlanned
}

// IsFailure reports whether the step failed.
func (o Outcome) IsFailure() bool {
	s := string(o)
	return s == failedPrefix || strings.HasPrefix(s, failedPrefix+":")
}

// Reason returns the failure reason, or "" for non-failures.
func (o Outcome) Reason() string {
	if !o.IsFailure() {
		return ""
	}
	return strings.TrimPrefix(strings.TrimPrefix(string(o), failedPrefix), ":")
}
