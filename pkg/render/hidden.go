package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// FormIDFieldName names the hidden input that carries a published form's
// public id back to the submit handler.
const FormIDFieldName = "_form_id"

type HiddenField struct {
	Name  string
	Value string
}

func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

func CSRFToken(name, token string) HiddenField { return Hidden(name, token) }

func FormID(id string) HiddenField { return Hidden(FormIDFieldName, id) }

// MergeHiddenFields copies base and applies fields over it, later entries
// winning. Blank names are dropped and an empty result is nil.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := map[string]string{}
	for name, value := range base {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = value
		}
	}
	for _, field := range fields {
		if field.Name != "" {
			out[field.Name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders the map by name so rendered markup is stable.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	var out []HiddenField
	for name, value := range fields {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, HiddenField{Name: name, Value: value})
		}
	}
	slices.SortFunc(out, func(a, b HiddenField) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
