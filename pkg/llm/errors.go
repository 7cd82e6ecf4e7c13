package llm

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyResponse means the model call failed or produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ParseError means the model replied but the reply lacked the expected structure.
type ParseError struct {
	Kind   string
	Reason string
	Raw    string
}

func (e *ParseError) Error() (msg string) {
	msg = fmt.Sprintf("failed to parse %s response: %s", e.Kind, e.Reason)
	return msg
}

func parseErrorf(kind, raw, format string, args ...interface{}) (err *ParseError) {
	err = &ParseError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
		Raw:    raw,
	}
	return err
}
