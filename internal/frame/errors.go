package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrNeedMore reports that the buffered bytes do not yet contain a
	// complete frame and the caller should feed more input.
	ErrNeedMore = errors.New("need more data")

	// ErrFrameTooLarge reports an opening marker whose closing marker did
	// not appear within the scanner's lookahead bound. The scanner abandons
	// the marker and rescans after it.
	ErrFrameTooLarge = errors.New("frame exceeds lookahead bound")

	errMissingElement = errors.New("element not found")
)

// DecodeError reports a frame whose markers matched but whose contents could
// not be decoded. Field names the offending sub-element: "type", "code",
// "length", or "data".
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErrf(field, format string, args ...any) *DecodeError {
	return &DecodeError{Field: field, Err: fmt.Errorf(format, args...)}
}
