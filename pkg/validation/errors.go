package validation

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formchat/pkg/model"
)

// ErrValidation matches every *Error via errors.Is.
var ErrValidation = errors.New("validation: invalid input")

// Error is a locally detected validation failure. It is never sent over the
// network.
type Error struct {
	// Fields maps an input name (derived id, or "formName"/"message" for
	// create inputs) to its error text.
	Fields map[string]string
	// MissingLabels lists required field labels without a value, in schema
	// order.
	MissingLabels []string
	Message       string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return ErrValidation.Error()
}

// Is reports a match against ErrValidation.
func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

// Kind implements model.KindError.
func (e *Error) Kind() model.ErrorKind { return model.KindValidation }
