package iss

import (
	"errors"
	"fmt"
)

// Request outcome classes. Typed errors below match these via errors.Is.
var (
	// ErrTransport covers dial, read and non-2xx failures.
	ErrTransport = errors.New("iss transport failure")

	// ErrDecode is returned when the response body is not valid JSON.
	ErrDecode = errors.New("iss decode failure")

	// ErrEmptyResult is returned when the server answered 2xx with no body.
	ErrEmptyResult = errors.New("iss empty result")

	errInvalidJSON = errors.New("invalid JSON")
)

// Parse boundary and lookup errors.
var (
	// ErrBlockMissing is returned when a named block is absent from a document.
	ErrBlockMissing = errors.New("block missing")

	// ErrSchema is returned when a block does not have the expected shape.
	ErrSchema = errors.New("unexpected block schema")

	// ErrNotFound is returned when an instrument lookup yields zero rows.
	ErrNotFound = errors.New("instrument not found")

	// ErrUnknownInterval is returned for an interval token outside the lookup table.
	ErrUnknownInterval = errors.New("unknown interval")
)

// TransportError describes a failed HTTP exchange.
// StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: server responded with a %d status code", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError describes a response body that could not be parsed as JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
