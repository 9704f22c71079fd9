package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/validation"
)

// RequiredMessage is the inline text attached to a field reported missing.
const RequiredMessage = "This field is required"

// ErrorMapping splits an error payload into field-level messages keyed by
// derived id and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Apply merges the mapping into options.
func (m ErrorMapping) Apply(options *RenderOptions) {
	if options == nil {
		return
	}
	if len(m.Fields) > 0 {
		if options.Errors == nil {
			options.Errors = make(map[string][]string, len(m.Fields))
		}
		for id, messages := range m.Fields {
			options.Errors[id] = normalizeMessages(append(options.Errors[id], messages...))
		}
	}
	options.FormErrors = MergeFormErrors(options.FormErrors, m.Form...)
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapMissingLabels turns a failed validation result into inline errors. The
// summary message is kept as a form-level error.
func MapMissingLabels(fields []model.Field, result validation.Result) ErrorMapping {
	mapping := ErrorMapping{}
	if result.OK {
		return mapping
	}
	missing := make(map[string]struct{}, len(result.MissingLabels))
	for _, label := range result.MissingLabels {
		missing[label] = struct{}{}
	}
	for _, field := range fields {
		if _, ok := missing[field.Label]; !ok {
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		id := field.ID()
		mapping.Fields[id] = normalizeMessages(append(mapping.Fields[id], RequiredMessage))
	}
	mapping.Form = normalizeMessages([]string{result.Message()})
	return mapping
}

// MapError converts any error into a mapping. Validation errors keep their
// per-field detail; anything else becomes a form-level message.
func MapError(fields []model.Field, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		mapping := MapMissingLabels(fields, validation.Result{MissingLabels: vErr.MissingLabels})
		for name, message := range vErr.Fields {
			if mapping.Fields == nil {
				mapping.Fields = make(map[string][]string)
			}
			mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], message))
		}
		mapping.Form = MergeFormErrors(nil, vErr.Error())
		return mapping
	}
	return ErrorMapping{Form: MergeFormErrors(nil, err.Error())}
}

// MapErrorPayload normalises a server error payload into derived field ids.
// Keys may be ids, labels or paths such as "body.formData.email"; unknown keys
// are kept as form-level errors so messages are not lost.
func MapErrorPayload(form Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	ids := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		if id := field.ID(); id != "" {
			ids[id] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		id, ok := mapErrorPath(rawPath, ids)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[id] = append(mapping.Fields[id], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, ids map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	// The last segment names the field; earlier ones are envelopes.
	for idx := len(segments) - 1; idx >= 0; idx-- {
		candidate := model.DeriveID(segments[idx])
		if _, ok := ids[candidate]; ok {
			return candidate, true
		}
	}
	if candidate := model.DeriveID(raw); candidate != "" {
		if _, ok := ids[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":     {},
		"request":  {},
		"payload":  {},
		"data":     {},
		"formdata": {},
		"values":   {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
