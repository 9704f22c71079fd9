package validation

import (
	"strings"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

// MissingFieldsPrefix opens the message listing missing required fields.
const MissingFieldsPrefix = "Please fill in all required fields:\n"

// Result is the outcome of validating submitted values.
type Result struct {
	OK            bool     `json:"ok"`
	MissingLabels []string `json:"missingLabels,omitempty"`
}

// Message returns the human-readable summary, or "" when OK.
func (r Result) Message() string {
	if r.OK {
		return ""
	}
	return MissingFieldsPrefix + strings.Join(r.MissingLabels, ", ")
}

// Err returns the result as a *Error, or nil when OK.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{
		MissingLabels: append([]string(nil), r.MissingLabels...),
		Message:       r.Message(),
	}
}

// Validate checks values against the required rule of every field. Values are
// keyed by derived id. A value is missing when it is absent, nil, a blank
// string or an empty list. Fields the dispatch table exempts (checkbox) and
// unknown types are never reported.
func Validate(fields []model.Field, values map[string]any) Result {
	return ValidateWith(widgets.Default(), fields, values)
}

// ValidateWith validates against a specific dispatch table.
func ValidateWith(reg *widgets.Registry, fields []model.Field, values map[string]any) Result {
	var missing []string
	for _, field := range fields {
		if !reg.RequiresValue(field) {
			continue
		}
		if IsMissing(values[field.ID()]) {
			missing = append(missing, field.Label)
		}
	}
	return Result{OK: len(missing) == 0, MissingLabels: missing}
}

// IsMissing applies the missing-value rule to a single value.
func IsMissing(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	default:
		return false
	}
}

// BindValues pairs each field with its submitted value, defaulting to "".
// The result is the payload shape of the submit endpoint.
func BindValues(fields []model.Field, values map[string]any) []model.SubmittedField {
	out := make([]model.SubmittedField, len(fields))
	for idx, field := range fields {
		value, ok := values[field.ID()]
		if !ok || value == nil {
			value = ""
		}
		out[idx] = model.SubmittedField{Field: field.Clone(), Value: value}
	}
	return out
}

// SubmitterEmail returns the value bound to the "email" id, if any.
func SubmitterEmail(values map[string]any) string {
	if email, ok := values["email"].(string); ok {
		return strings.TrimSpace(email)
	}
	return ""
}
