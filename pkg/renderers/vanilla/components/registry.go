// Package components holds the per-widget control renderers of the vanilla
// HTML renderer.
package components

import (
	"bytes"
	"fmt"
	"slices"

	rendertemplate "github.com/goliatone/go-formchat/pkg/render/template"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

// Renderer writes the control markup for one resolved field into buf.
type Renderer func(buf *bytes.Buffer, field widgets.Spec, data ComponentData) error

// ComponentData carries the per-field state and helpers a component needs.
type ComponentData struct {
	Template  rendertemplate.TemplateRenderer
	ControlID string
	Value     any
	Errors    []string
	// ThemePartials maps partial keys (e.g. "forms.select") to template
	// overrides supplied by the active theme.
	ThemePartials map[string]string
}

// Descriptor is the control renderer of one widget plus the stylesheets it
// pulls in.
type Descriptor struct {
	Widget      widgets.Widget
	Renderer    Renderer
	Stylesheets []string
	// LabelFor is true when the control is a single element a <label for>
	// can point at.
	LabelFor bool
}

// Registry maps widgets to descriptors. Registering a widget twice replaces
// the earlier descriptor, which is how callers override a default control.
type Registry struct {
	byWidget map[widgets.Widget]Descriptor
}

func New() *Registry {
	return &Registry{byWidget: make(map[widgets.Widget]Descriptor)}
}

func (r *Registry) Register(widget widgets.Widget, descriptor Descriptor) error {
	if widget == "" {
		return fmt.Errorf("components: widget is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", widget)
	}
	descriptor.Widget = widget
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	r.byWidget[widget] = descriptor
	return nil
}

// Descriptor returns a copy callers may modify freely.
func (r *Registry) Descriptor(widget widgets.Widget) (Descriptor, bool) {
	descriptor, ok := r.byWidget[widget]
	if !ok {
		return Descriptor{}, false
	}
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	return descriptor, true
}

// Stylesheets collects the stylesheets of the given widgets once each, in
// first-seen order.
func (r *Registry) Stylesheets(used []widgets.Widget) []string {
	var out []string
	for _, widget := range used {
		for _, href := range r.byWidget[widget].Stylesheets {
			if href != "" && !slices.Contains(out, href) {
				out = append(out, href)
			}
		}
	}
	return out
}
