// Package apperr defines the sentinel errors shared across packages.
package apperr

import "errors"

var (
	// ErrNotFound reports a missing staged item or stored document.
	ErrNotFound = errors.New("not found")
	// ErrMalformed reports index or document content that fails to parse.
	ErrMalformed = errors.New("malformed data")
	// ErrCounterCorrupt reports a counter file that exists but does not hold
	// a non-negative integer.
	ErrCounterCorrupt = errors.New("sequence counter corrupt")
	// ErrEmptyContent reports a submission with no body to assemble.
	ErrEmptyContent = errors.New("empty content")
	ErrInvalidInput = errors.New("invalid input")
	ErrFetchFailed  = errors.New("fetch failed")
)
