package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

func noopControl(*bytes.Buffer, widgets.Spec, ComponentData) error { return nil }

func TestRegistry_DescriptorIsACopy(t *testing.T) {
	reg := New()
	if err := reg.Register(widgets.WidgetInput, Descriptor{Renderer: noopControl, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor(widgets.WidgetInput)
	if !ok || desc.Widget != widgets.WidgetInput {
		t.Fatalf("unexpected descriptor %+v (found %v)", desc, ok)
	}
	desc.Stylesheets[0] = "/mutated.css"

	again, _ := reg.Descriptor(widgets.WidgetInput)
	if diff := cmp.Diff([]string{"/a.css"}, again.Stylesheets); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}

	if err := reg.Register(widgets.WidgetDate, Descriptor{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
	if err := reg.Register("", Descriptor{Renderer: noopControl}); err == nil {
		t.Fatalf("expected error for empty widget")
	}
}

func TestRegistry_StylesheetsDeduplicate(t *testing.T) {
	reg := New()
	_ = reg.Register(widgets.WidgetInput, Descriptor{Renderer: noopControl, Stylesheets: []string{"/shared.css", "/input.css"}})
	_ = reg.Register(widgets.WidgetSelect, Descriptor{Renderer: noopControl, Stylesheets: []string{"/shared.css", "/select.css"}})

	got := reg.Stylesheets([]widgets.Widget{widgets.WidgetInput, widgets.WidgetSelect, widgets.WidgetDate})
	want := []string{"/shared.css", "/input.css", "/select.css"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistry_CoversEveryWidget(t *testing.T) {
	reg := NewDefaultRegistry()
	for _, typ := range model.FieldTypes() {
		strategy, ok := widgets.Lookup(typ)
		if !ok {
			t.Fatalf("no strategy for %q", typ)
		}
		if _, ok := reg.Descriptor(strategy.Widget); !ok {
			t.Errorf("no component registered for widget %q", strategy.Widget)
		}
	}
}
