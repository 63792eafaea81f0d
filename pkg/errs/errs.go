// Package errs defines the error taxonomy of the matching pipeline.
// Transport errors carry whether a retry may help; everything else is
// classified at the site that produced it.
package errs

import (
	"errors"
	"fmt"
)

// ExtractionError: the input file could not be opened or no usable
// header row was found. Fatal to the extraction call and to its task.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("extraction failed for %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func NewExtractionError(file string, err error) *ExtractionError {
	return &ExtractionError{File: file, Err: err}
}

// AITransportError: timeout, connection failure, HTTP 429 or 5xx.
// The gateway retries these up to its budget before surfacing the last one.
type AITransportError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *AITransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai transport error: %v", e.Err)
}

func (e *AITransportError) Unwrap() error { return e.Err }

// AIClientError: any other 4xx. Never retried.
type AIClientError struct {
	StatusCode int
	Body       string
}

func (e *AIClientError) Error() string {
	return fmt.Sprintf("ai client error (status %d): %s", e.StatusCode, e.Body)
}

// DecodeError: the AI response was not parseable as structured data even
// after fence stripping and regex recovery. Callers convert it to a
// neutral result instead of propagating.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ai response decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsRetryable reports whether the gateway may attempt the call again.
func IsRetryable(err error) bool {
	var te *AITransportError
	return errors.As(err, &te)
}
