package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the schema.
type RenderOptions struct {
	// Action is the form's submit target. Empty renders a preview without a
	// submit button.
	Action string
	// Method defaults to POST.
	Method string
	// SubmitLabel overrides the submit button text.
	SubmitLabel string
	// Values pre-populates controls keyed by derived field id.
	Values map[string]any
	// Errors surfaces validation feedback keyed by derived field id.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// Hidden inputs emitted alongside the visible fields.
	Hidden map[string]string
	// Theme carries resolved theme tokens. Nil renders unstyled markup.
	Theme *theme.RendererConfig
}
