package device

import (
	"errors"
	"fmt"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("device: malformed payload")

// ParseError reports a value that could not be decoded for an identifier.
type ParseError struct {
	Identifier model.Identifier
	Payload    string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("device: malformed payload %q for %s: %v", e.Payload, e.Identifier, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

func newParseError(id model.Identifier, raw any, err error) *ParseError {
	return &ParseError{Identifier: id, Payload: fmt.Sprint(raw), Err: err}
}
