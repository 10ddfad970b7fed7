package rtac

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when the input is not a well-formed XML document.
var ErrMalformedInput = errors.New("malformed XML input")

// ParseError describes why a document could not be decoded.
// errors.Is(err, ErrMalformedInput) reports true for every ParseError.
type ParseError struct {
	File  string
	Cause error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %v: %v", e.File, ErrMalformedInput, e.Cause)
	}
	return fmt.Sprintf("%v: %v", ErrMalformedInput, e.Cause)
}

// Is matches ErrMalformedInput.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Unwrap returns the decoder error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
