package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/validation"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

// Renderer implements render.Renderer for terminal sessions: it prompts for
// every renderable field and returns the collected answers keyed by derived
// id. The required rule is the one the submission validator applies.
type Renderer struct {
	driver            PromptDriver
	widgets           *widgets.Registry
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		widgets:      widgets.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for each field and serializes the answers.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(form.Fields, values)
}

// Collect prompts for each field and returns the raw answers.
func (r *Renderer) Collect(ctx context.Context, form render.Form, opts render.RenderOptions) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if form.Name != "" {
		_ = r.info(ctx, form.Name)
	}
	for _, message := range opts.FormErrors {
		_ = r.error(ctx, message)
	}

	values := make(map[string]any, len(form.Fields))
	for idx, field := range form.Fields {
		spec, ok := r.widgets.Resolve(field, idx)
		if !ok {
			logger.From(ctx).Debug().
				Str("component", "tui").
				Str("label", field.Label).
				Str("type", string(field.Type)).
				Msg("skipping field with unsupported type")
			continue
		}
		for _, message := range opts.Errors[spec.Name] {
			_ = r.error(ctx, fmt.Sprintf("%s: %s", spec.Label, message))
		}
		value, err := r.promptField(ctx, spec, opts.Values[spec.Name])
		if err != nil {
			return nil, err
		}
		values[spec.Name] = value
	}

	if result := validation.ValidateWith(r.widgets, form.Fields, values); !result.OK {
		return nil, result.Err()
	}

	if r.submitTransformer != nil {
		transformed, err := r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
		values = transformed
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, spec widgets.Spec, prefill any) (any, error) {
	switch spec.Widget {
	case widgets.WidgetTextArea:
		return r.promptTextArea(ctx, spec, prefill)
	case widgets.WidgetSelect, widgets.WidgetRadioGroup:
		return r.promptChoice(ctx, spec, prefill)
	case widgets.WidgetCheckboxGroup:
		return r.promptMulti(ctx, spec, prefill)
	case widgets.WidgetDate:
		return r.promptInput(ctx, spec, prefill, validateDate)
	default:
		return r.promptInput(ctx, spec, prefill, nil)
	}
}

func (r *Renderer) promptInput(ctx context.Context, spec widgets.Spec, prefill any, check func(string) error) (any, error) {
	validator := func(answer string) error {
		if spec.ShowRequired && validation.IsMissing(answer) {
			return errors.New("required")
		}
		if check != nil && strings.TrimSpace(answer) != "" {
			return check(answer)
		}
		return nil
	}

	for {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: promptLabel(spec),
			Default: stringValue(prefill),
			Help:    helpText(spec),
		})
		if err != nil {
			return nil, err
		}
		if err := validator(answer); err != nil {
			_ = r.error(ctx, fmt.Sprintf("Invalid %s: %v", spec.Label, err))
			continue
		}
		return strings.TrimSpace(answer), nil
	}
}

func (r *Renderer) promptTextArea(ctx context.Context, spec widgets.Spec, prefill any) (any, error) {
	for {
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: promptLabel(spec),
			Default: stringValue(prefill),
			Help:    helpText(spec),
		})
		if err != nil {
			return nil, err
		}
		if spec.ShowRequired && validation.IsMissing(answer) {
			_ = r.error(ctx, fmt.Sprintf("Invalid %s: required", spec.Label))
			continue
		}
		return answer, nil
	}
}

// promptChoice offers the placeholder as the first entry so an optional
// field can be left empty.
func (r *Renderer) promptChoice(ctx context.Context, spec widgets.Spec, prefill any) (any, error) {
	if len(spec.Options) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOptions, spec.Label)
	}
	placeholder := spec.Placeholder
	if placeholder == "" {
		placeholder = widgets.SelectPlaceholder
	}
	labels := append([]string{placeholder}, optionLabels(spec.Options)...)

	defaultIdx := 0
	if current := stringValue(prefill); current != "" {
		if idx := optionIndex(spec.Options, current); idx >= 0 {
			defaultIdx = idx + 1
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      promptLabel(spec),
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         helpText(spec),
		})
		if err != nil {
			return nil, err
		}
		if idx <= 0 || idx >= len(labels) {
			if spec.ShowRequired {
				_ = r.error(ctx, fmt.Sprintf("Invalid %s: required", spec.Label))
				continue
			}
			return "", nil
		}
		return spec.Options[idx-1].ID, nil
	}
}

func (r *Renderer) promptMulti(ctx context.Context, spec widgets.Spec, prefill any) (any, error) {
	if len(spec.Options) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOptions, spec.Label)
	}
	var defaults []int
	for _, value := range listValue(prefill) {
		if idx := optionIndex(spec.Options, value); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}

	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  promptLabel(spec),
		Options:  optionLabels(spec.Options),
		Defaults: defaults,
		Help:     helpText(spec),
	})
	if err != nil {
		return nil, err
	}
	selected := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(spec.Options) {
			selected = append(selected, spec.Options[idx].ID)
		}
	}
	return selected, nil
}

func (r *Renderer) info(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+message)
}

func (r *Renderer) error(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+message)
}

func (r *Renderer) serialize(fields model.Schema, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(fields, values)), nil
	default:
		return json.Marshal(values)
	}
}

func promptLabel(spec widgets.Spec) string {
	if spec.ShowRequired {
		return spec.Label + " *"
	}
	return spec.Label
}

func helpText(spec widgets.Spec) string {
	switch spec.Widget {
	case widgets.WidgetDate:
		return "Format: YYYY-MM-DD"
	case widgets.WidgetCheckboxGroup:
		return "Select any that apply"
	default:
		return ""
	}
}

func validateDate(answer string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(answer)); err != nil {
		return fmt.Errorf("expected a date like 2024-01-31")
	}
	return nil
}

func optionLabels(options []model.Option) []string {
	out := make([]string, len(options))
	for idx, opt := range options {
		out[idx] = opt.DisplayLabel()
	}
	return out
}

func optionIndex(options []model.Option, value string) int {
	for idx, opt := range options {
		if opt.Value() == value {
			return idx
		}
	}
	return -1
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func listValue(value any) []string {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(typed)}
	}
}

func encodeForm(values map[string]any) string {
	out := url.Values{}
	for key, value := range values {
		switch typed := value.(type) {
		case []any:
			for _, item := range typed {
				out.Add(key, fmt.Sprint(item))
			}
		default:
			out.Set(key, stringValue(typed))
		}
	}
	return out.Encode()
}

// prettyPrint lists answers in schema order, falling back to sorted keys for
// values the schema does not name.
func prettyPrint(fields model.Schema, values map[string]any) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, field := range fields {
		id := field.ID()
		value, ok := values[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		row := model.SubmittedField{Field: field, Value: value}
		fmt.Fprintf(&b, "%s: %s\n", field.Label, row.DisplayValue())
	}
	var rest []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(&b, "%s: %s\n", key, model.SubmittedField{Value: values[key]}.DisplayValue())
	}
	return b.String()
}
