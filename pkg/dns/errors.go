package dns

import "errors"

var (
	// ErrTruncated is returned when a message ends before a field or
	// section it declares.
	ErrTruncated = errors.New("truncated dns message")

	// ErrMalformedCompression is returned when a name compression pointer
	// references an invalid offset or forms a loop.
	ErrMalformedCompression = errors.New("malformed name compression")
)
