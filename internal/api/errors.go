package api

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected locally before any network
// activity (blank text, empty batch).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ApplicationError reports a non-2xx backend response. Detail carries
// the backend's "detail" field verbatim and is what users see.
type ApplicationError struct {
	Status int
	Detail string
}

func (e *ApplicationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned HTTP %d", e.Status)
}

// TransportError reports a failure to reach the backend or to read a
// well-formed response: dial errors, timeouts, malformed JSON. Hint is
// an optional human-oriented explanation for common failure modes.
type TransportError struct {
	Err  error
	Hint string
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage flattens any error from this package into the string
// shown to the user: validation and application errors verbatim,
// transport errors with their hint appended when one exists.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if errors.As(err, &te) && te.Hint != "" {
		return fmt.Sprintf("%s (%s)", te.Err.Error(), te.Hint)
	}
	return err.Error()
}
