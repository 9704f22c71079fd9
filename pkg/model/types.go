package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the closed enumeration of input kinds a schema may declare.
// Values outside the set decode without error and are treated as
// unrenderable by downstream consumers.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeTextArea   FieldType = "textarea"
	FieldTypeDropdown   FieldType = "dropdown"
	FieldTypeRadio      FieldType = "radio"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeDatePicker FieldType = "datepicker"
)

// FieldTypes lists every known field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextArea,
		FieldTypeDropdown,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeDatePicker,
	}
}

// Known reports whether t belongs to the closed set.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeTextArea, FieldTypeDropdown,
		FieldTypeRadio, FieldTypeCheckbox, FieldTypeDatePicker:
		return true
	default:
		return false
	}
}

// HasOptions reports whether fields of this type carry a choice list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// Option is one selectable choice. The generation service emits either
// objects or bare strings; a bare string is shorthand for ID == Label and is
// re-encoded as a string so schemas round-trip unchanged.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Shorthand marks options declared as bare strings.
	Shorthand bool `json:"-"`
}

// StringOption builds an option in its shorthand form.
func StringOption(value string) Option {
	return Option{ID: value, Label: value, Shorthand: true}
}

// Value returns the submitted value for the option (its ID, falling back to
// the label when the ID is empty).
func (o Option) Value() string {
	if o.ID != "" {
		return o.ID
	}
	return o.Label
}

// DisplayLabel returns the label, falling back to the ID.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.ID
}

// UnmarshalJSON accepts `"A"` or `{"id":"a","label":"A"}`.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*o = StringOption(value)
		return nil
	}

	var raw struct {
		ID    any `json:"id"`
		Label any `json:"label"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("model: option must be a string or {id,label} object: %w", err)
	}
	*o = Option{ID: scalarString(raw.ID), Label: scalarString(raw.Label)}
	return nil
}

// MarshalJSON preserves the shorthand form.
func (o Option) MarshalJSON() ([]byte, error) {
	if o.Shorthand && o.ID == o.Label {
		return json.Marshal(o.ID)
	}
	type plain struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	return json.Marshal(plain{ID: o.ID, Label: o.Label})
}

// Field is one schema entry.
type Field struct {
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []Option  `json:"options,omitempty"`
}

// ID returns the derived identifier used to bind submitted values.
func (f Field) ID() string {
	return DeriveID(f.Label)
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]Option(nil), f.Options...)
	}
	return out
}

// Schema is the ordered list of fields describing an entire form.
type Schema []Field

// Clone returns a deep copy. A nil schema clones to an empty, non-nil one so
// published values never alias a live draft.
func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	for idx, field := range s {
		out[idx] = field.Clone()
	}
	return out
}

// IDs returns the derived identifier of every field in schema order.
func (s Schema) IDs() []string {
	ids := make([]string, len(s))
	for idx, field := range s {
		ids[idx] = field.ID()
	}
	return ids
}

// Lookup returns the last field whose derived identifier equals id; later
// fields win, matching value binding.
func (s Schema) Lookup(id string) (Field, bool) {
	for idx := len(s) - 1; idx >= 0; idx-- {
		if s[idx].ID() == id {
			return s[idx], true
		}
	}
	return Field{}, false
}

// SubmittedField is the `(Field & {value})` wire shape used by the submit and
// submissions endpoints.
type SubmittedField struct {
	Field
	Value any `json:"value"`
}

// DisplayValue renders the value for tabular listings.
func (f SubmittedField) DisplayValue() string {
	switch typed := f.Value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(typed, ", ")
	default:
		return fmt.Sprint(typed)
	}
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
