package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formchat/pkg/model"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Sanitizer strips markup from labels and option text. Schemas come from a
// language model and are rendered into HTML, so every label is treated as
// untrusted.
type Sanitizer struct{}

// NewSanitizer returns the default label sanitizer.
func NewSanitizer() Sanitizer { return Sanitizer{} }

// Decorate implements model.Decorator.
func (Sanitizer) Decorate(fields *model.Schema) error {
	if fields == nil {
		return nil
	}
	for idx := range *fields {
		field := &(*fields)[idx]
		field.Label = SanitizeText(field.Label)
		for optIdx := range field.Options {
			opt := &field.Options[optIdx]
			opt.ID = SanitizeText(opt.ID)
			opt.Label = SanitizeText(opt.Label)
		}
	}
	return nil
}

// SanitizeText removes every tag from raw and returns plain text.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	// StrictPolicy escapes entities; labels are stored as plain text and
	// escaped again by renderers.
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
