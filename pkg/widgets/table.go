package widgets

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formchat/pkg/model"
)

// Widget names the input kind a field renders as.
type Widget string

const (
	WidgetInput         Widget = "input"
	WidgetTextArea      Widget = "textarea"
	WidgetSelect        Widget = "select"
	WidgetRadioGroup    Widget = "radio-group"
	WidgetCheckboxGroup Widget = "checkbox-group"
	WidgetDate          Widget = "date"
)

// SelectPlaceholder is the empty leading choice offered by select widgets.
const SelectPlaceholder = "Select..."

// Strategy pairs a field type with how it renders and how it validates.
type Strategy struct {
	Widget   Widget
	HTMLType string
	// Multiple marks widgets whose value is a list.
	Multiple bool
	// RequiredExempt fields are never reported missing and render no
	// required marker.
	RequiredExempt bool
}

// builtins is the dispatch table. Adding a field type means adding one entry
// here and one constant in pkg/model.
var builtins = map[model.FieldType]Strategy{
	model.FieldTypeText:       {Widget: WidgetInput, HTMLType: "text"},
	model.FieldTypeTextArea:   {Widget: WidgetTextArea, HTMLType: "textarea"},
	model.FieldTypeDropdown:   {Widget: WidgetSelect, HTMLType: "select"},
	model.FieldTypeRadio:      {Widget: WidgetRadioGroup, HTMLType: "radio"},
	model.FieldTypeCheckbox:   {Widget: WidgetCheckboxGroup, HTMLType: "checkbox", Multiple: true, RequiredExempt: true},
	model.FieldTypeDatePicker: {Widget: WidgetDate, HTMLType: "date"},
}

// Registry holds the dispatch table. The zero value is empty; NewRegistry
// seeds it with the built-in strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[model.FieldType]Strategy
}

// NewRegistry constructs a registry with the built-in strategies registered.
func NewRegistry() *Registry {
	reg := &Registry{strategies: make(map[model.FieldType]Strategy, len(builtins))}
	for typ, strategy := range builtins {
		reg.strategies[typ] = strategy
	}
	return reg
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package functions.
func Default() *Registry { return defaultRegistry }

// Register installs or replaces the strategy for typ.
func (r *Registry) Register(typ model.FieldType, strategy Strategy) {
	if r == nil {
		return
	}
	typ = model.FieldType(strings.TrimSpace(string(typ)))
	if typ == "" || strategy.Widget == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.strategies == nil {
		r.strategies = make(map[model.FieldType]Strategy)
	}
	r.strategies[typ] = strategy
}

// Lookup returns the strategy for typ.
func (r *Registry) Lookup(typ model.FieldType) (Strategy, bool) {
	if r == nil {
		return Strategy{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	strategy, ok := r.strategies[typ]
	return strategy, ok
}

// Types lists the registered field types.
func (r *Registry) Types() []model.FieldType {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.FieldType, 0, len(r.strategies))
	for typ := range r.strategies {
		out = append(out, typ)
	}
	return out
}

// RequiresValue reports whether a missing value for field fails validation.
// Unknown types never require a value since they are never rendered.
func (r *Registry) RequiresValue(field model.Field) bool {
	if !field.Required {
		return false
	}
	strategy, ok := r.Lookup(field.Type)
	if !ok {
		return false
	}
	return !strategy.RequiredExempt
}

// RequiresValue consults the default registry.
func RequiresValue(field model.Field) bool {
	return defaultRegistry.RequiresValue(field)
}

// Lookup consults the default registry.
func Lookup(typ model.FieldType) (Strategy, bool) {
	return defaultRegistry.Lookup(typ)
}
