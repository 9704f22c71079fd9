package formchat

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	if _, err := fs.ReadFile(AssetsFS(), "formchat-vanilla.css"); err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
}

func TestEmbeddedTemplatesIncludeWidgetPartials(t *testing.T) {
	for _, name := range []string{"templates/form.tmpl", "templates/components/checkbox_group.tmpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestParseSchemaThenRenderHTML(t *testing.T) {
	fields, err := ParseSchema([]byte(`"[{\"label\":\"Full Name\",\"type\":\"text\",\"required\":true},{\"label\":\"Size\",\"type\":\"dropdown\",\"options\":[\"S\",\"M\"]}]"`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"full_name", "size"}, fields.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	html, err := RenderHTML(context.Background(), "pub-1", fields, RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`name="full_name"`, `name="size"`} {
		if !strings.Contains(string(html), want) {
			t.Fatalf("expected %s in output:\n%s", want, html)
		}
	}
}
