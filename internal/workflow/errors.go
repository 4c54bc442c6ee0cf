package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkflowNotFound is returned when no record exists for an id.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrSampleNotFound is returned when feedback targets an unknown style sample.
	ErrSampleNotFound = errors.New("style sample not found")
	// ErrNoArticle is returned when a step requires a generated article and
	// the record does not have one yet.
	ErrNoArticle = errors.New("no article generated")
	// ErrProvider classifies upstream LLM failures, including timeouts.
	ErrProvider = errors.New("llm provider failure")
)

// ValidationError reports a rejected request payload. The step leaves the
// record untouched when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
