package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDateFormat matches every *DateFormatError.
	ErrInvalidDateFormat = errors.New("date must be in the format yyyy-mm-dd and be a real calendar date")
	// ErrEmptySiteList means the account returned no sites at all.
	ErrEmptySiteList = errors.New("amber returned an empty site list")
	// ErrNoIntervals means a price window came back empty.
	ErrNoIntervals = errors.New("amber returned no price intervals")
)

type DateFormatError struct {
	Input string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, ErrInvalidDateFormat)
}

func (e *DateFormatError) Is(target error) bool {
	return target == ErrInvalidDateFormat
}

func (e *DateFormatError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any non-200 response. Body is the raw
// response text, kept as is because error payloads vary in shape.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError wraps network level failures: refused connections,
// timeouts, TLS and DNS errors. Nothing in this package retries them.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("executing request to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
