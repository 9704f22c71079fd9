package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/render"
	rendertemplate "github.com/goliatone/go-formchat/pkg/render/template"
	gotemplate "github.com/goliatone/go-formchat/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formchat/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

const defaultSubmitLabel = "Submit"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	engineOptions    []gotemplatepkg.Option
	components       *components.Registry
	widgets          *widgets.Registry
	stylesheets      []string
	inlineStyles     bool
	submitLabel      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithEngineOptions forwards go-template options to the default engine.
func WithEngineOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.engineOptions = append(cfg.engineOptions, options...)
	}
}

// WithComponentRegistry replaces the component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgetRegistry replaces the dispatch table used to resolve fields.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithStylesheet links an external stylesheet ahead of the form.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(href); trimmed != "" {
			cfg.stylesheets = append(cfg.stylesheets, trimmed)
		}
	}
}

// WithDefaultStyles inlines the bundled stylesheet.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithSubmitLabel sets the default submit button text.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			cfg.submitLabel = trimmed
		}
	}
}

// Renderer produces plain HTML forms from a schema.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	components   *components.Registry
	widgets      *widgets.Registry
	stylesheets  []string
	inlineStyles string
	submitLabel  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithGoTemplateOptions(cfg.engineOptions...),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	out := &Renderer{
		templates:   renderer,
		components:  cfg.components,
		widgets:     cfg.widgets,
		stylesheets: append([]string(nil), cfg.stylesheets...),
		submitLabel: cfg.submitLabel,
	}
	if out.components == nil {
		out.components = components.NewDefaultRegistry()
	}
	if out.widgets == nil {
		out.widgets = widgets.Default()
	}
	if out.submitLabel == "" {
		out.submitLabel = defaultSubmitLabel
	}
	if cfg.inlineStyles {
		out.inlineStyles = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render emits one control per renderable field in schema order. Fields of
// unknown type are skipped.
func (r *Renderer) Render(ctx context.Context, form render.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	fields := newFieldRenderer(r.templates, r.components, themePartials(options.Theme))
	markup := make([]string, 0, len(form.Fields))
	for idx, field := range form.Fields {
		spec, ok := r.widgets.Resolve(field, idx)
		if !ok {
			logger.From(ctx).Debug().
				Str("component", "vanilla").
				Str("label", field.Label).
				Str("type", string(field.Type)).
				Msg("skipping field with unsupported type")
			continue
		}
		html, err := fields.render(spec, options.Values[spec.Name], options.Errors[spec.Name])
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		markup = append(markup, html)
	}

	stylesheets := append([]string(nil), r.stylesheets...)
	stylesheets = append(stylesheets, themeStylesheets(options.Theme)...)
	stylesheets = append(stylesheets, fields.stylesheets()...)

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}
	submitLabel := strings.TrimSpace(options.SubmitLabel)
	if submitLabel == "" {
		submitLabel = r.submitLabel
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form":          map[string]any{"id": form.ID, "name": form.Name},
		"dom_id":        formDOMID(form),
		"action":        strings.TrimSpace(options.Action),
		"method":        method,
		"submit_label":  submitLabel,
		"fields":        markup,
		"hidden_fields": render.SortedHiddenFields(options.Hidden),
		"form_errors":   splitLines(render.MergeFormErrors(options.FormErrors)),
		"classes":       chromeClasses(),
		"stylesheets":   stylesheets,
		"inline_styles": r.inlineStyles,
		"theme":         themeContext(options.Theme),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func formDOMID(form render.Form) string {
	if id := model.DeriveID(form.ID); id != "" {
		return "fc-form-" + id
	}
	return "fc-form"
}

func splitLines(messages []string) [][]string {
	if len(messages) == 0 {
		return nil
	}
	out := make([][]string, 0, len(messages))
	for _, message := range messages {
		out = append(out, strings.Split(message, "\n"))
	}
	return out
}
