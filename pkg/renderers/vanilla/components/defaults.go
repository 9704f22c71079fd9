package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-formchat/pkg/widgets"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry registers one template-backed control per widget of the
// dispatch table. A theme may replace any template through its partial key.
func NewDefaultRegistry() *Registry {
	registry := New()
	defaults := []struct {
		widget   widgets.Widget
		partial  string
		file     string
		labelFor bool
	}{
		{widgets.WidgetInput, "forms.input", "input.tmpl", true},
		{widgets.WidgetTextArea, "forms.textarea", "textarea.tmpl", true},
		{widgets.WidgetSelect, "forms.select", "select.tmpl", true},
		{widgets.WidgetRadioGroup, "forms.radio-group", "radio_group.tmpl", false},
		{widgets.WidgetCheckboxGroup, "forms.checkbox-group", "checkbox_group.tmpl", false},
		{widgets.WidgetDate, "forms.date", "date.tmpl", true},
	}
	for _, d := range defaults {
		// Inputs are static and non-empty; Register cannot fail here.
		_ = registry.Register(d.widget, Descriptor{
			Renderer: templateControl(d.partial, templatePrefix+d.file),
			LabelFor: d.labelFor,
		})
	}
	return registry
}

func templateControl(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field widgets.Spec, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		name := templateName
		if override := strings.TrimSpace(data.ThemePartials[partialKey]); override != "" {
			name = override
		}
		rendered, err := data.Template.RenderTemplate(name, map[string]any{
			"field":      field,
			"control_id": data.ControlID,
			"value":      data.Value,
			"errors":     data.Errors,
			"invalid":    len(data.Errors) > 0,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", name, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
