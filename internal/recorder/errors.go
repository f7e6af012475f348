package recorder

import (
	"errors"
	"fmt"
)

// Sentinel kinds for recorder errors.
var (
	ErrMissingInput = errors.New("missing required input")
	ErrMissingEnv   = errors.New("missing environment variable")
	ErrSubmission   = errors.New("submission failed")
)

// SubmissionError reports a rejected or failed POST to the collector.
// StatusCode is zero when no response was received.
type SubmissionError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: %s responded %d", ErrSubmission, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s: %v", ErrSubmission, e.URL, e.Err)
}

// Unwrap exposes ErrSubmission and the transport cause.
func (e *SubmissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSubmission}
	}
	return []error{ErrSubmission, e.Err}
}
