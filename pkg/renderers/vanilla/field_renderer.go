package vanilla

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/goliatone/go-formchat/pkg/render/template"
	"github.com/goliatone/go-formchat/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

type fieldRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string

	used map[widgets.Widget]struct{}
}

func newFieldRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string) *fieldRenderer {
	return &fieldRenderer{
		templates: templates,
		registry:  registry,
		partials:  partials,
		used:      make(map[widgets.Widget]struct{}),
	}
}

func (r *fieldRenderer) render(spec widgets.Spec, value any, errors []string) (string, error) {
	name := spec.Widget
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", name, spec.Label)
	}

	controlID := controlID(spec)
	var control bytes.Buffer
	err := descriptor.Renderer(&control, spec, components.ComponentData{
		Template:      r.templates,
		ControlID:     controlID,
		Value:         value,
		Errors:        errors,
		ThemePartials: r.partials,
	})
	if err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", name, spec.Label, err)
	}
	r.used[name] = struct{}{}

	return r.templates.RenderTemplate("templates/field.tmpl", map[string]any{
		"field":      spec,
		"control_id": controlID,
		"control":    control.String(),
		"errors":     errors,
		"invalid":    len(errors) > 0,
		"label_for":  descriptor.LabelFor,
	})
}

func (r *fieldRenderer) stylesheets() []string {
	if len(r.used) == 0 {
		return nil
	}
	used := make([]widgets.Widget, 0, len(r.used))
	for widget := range r.used {
		used = append(used, widget)
	}
	slices.Sort(used)
	return r.registry.Stylesheets(used)
}

// controlID is unique per field position so duplicate labels still yield
// distinct DOM ids.
func controlID(spec widgets.Spec) string {
	if spec.Name == "" {
		return "fc-field-" + strconv.Itoa(spec.Index)
	}
	return "fc-" + spec.Name + "-" + strconv.Itoa(spec.Index)
}
