package widgets

import "github.com/goliatone/go-formchat/pkg/model"

// Spec is the render specification for one field. Name is the derived id
// that submitted values bind to.
type Spec struct {
	Index        int             `json:"index"`
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Type         model.FieldType `json:"type"`
	Widget       Widget          `json:"widget"`
	HTMLType     string          `json:"htmlType"`
	Options      []model.Option  `json:"options,omitempty"`
	Multiple     bool            `json:"multiple"`
	Required     bool            `json:"required"`
	ShowRequired bool            `json:"showRequired"`
	Placeholder  string          `json:"placeholder,omitempty"`
}

// Resolve maps a field to its render specification. Fields with an unknown
// type resolve to false and must render nothing.
func (r *Registry) Resolve(field model.Field, index int) (Spec, bool) {
	strategy, ok := r.Lookup(field.Type)
	if !ok {
		return Spec{}, false
	}
	spec := Spec{
		Index:        index,
		Name:         field.ID(),
		Label:        field.Label,
		Type:         field.Type,
		Widget:       strategy.Widget,
		HTMLType:     strategy.HTMLType,
		Multiple:     strategy.Multiple,
		Required:     field.Required,
		ShowRequired: field.Required && !strategy.RequiredExempt,
	}
	if field.Type.HasOptions() {
		spec.Options = normaliseOptions(field.Options)
	}
	if strategy.Widget == WidgetSelect {
		spec.Placeholder = SelectPlaceholder
	}
	return spec, true
}

// ResolveAll resolves every renderable field in schema order.
func (r *Registry) ResolveAll(fields model.Schema) []Spec {
	specs := make([]Spec, 0, len(fields))
	for idx, field := range fields {
		if spec, ok := r.Resolve(field, idx); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Resolve consults the default registry.
func Resolve(field model.Field, index int) (Spec, bool) {
	return defaultRegistry.Resolve(field, index)
}

// ResolveAll consults the default registry.
func ResolveAll(fields model.Schema) []Spec {
	return defaultRegistry.ResolveAll(fields)
}

// normaliseOptions returns options in {id,label} form, filling whichever side
// is missing from the other.
func normaliseOptions(options []model.Option) []model.Option {
	if len(options) == 0 {
		return []model.Option{}
	}
	out := make([]model.Option, len(options))
	for idx, opt := range options {
		out[idx] = model.Option{ID: opt.Value(), Label: opt.DisplayLabel()}
	}
	return out
}
