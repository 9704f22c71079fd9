package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formchat/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formchat/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplateGoldens(t *testing.T) {
	shout := func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	}

	tests := []struct {
		name    string
		data    map[string]any
		prepare func(*testing.T, *gotemplate.Engine)
	}{
		{name: "hello", data: map[string]any{"name": "Ada"}},
		{
			name: "use-global",
			prepare: func(t *testing.T, e *gotemplate.Engine) {
				if err := e.GlobalContext(map[string]any{"settings": map[string]any{"env": "staging"}}); err != nil {
					t.Fatalf("global context: %v", err)
				}
			},
		},
		{
			name: "use-filter",
			data: map[string]any{"name": "Ada"},
			prepare: func(t *testing.T, e *gotemplate.Engine) {
				if err := e.RegisterFilter("shout_test", shout); err != nil {
					t.Fatalf("register filter: %v", err)
				}
			},
		},
		{name: "use-field-id", data: map[string]any{"label": "  Email   Address ", "picked": []string{"a", "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(t)
			if tt.prepare != nil {
				tt.prepare(t, engine)
			}
			result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
				return engine.RenderTemplate(tt.name, tt.data, w)
			})
			if result != written {
				t.Fatalf("writer got %q, result %q", written, result)
			}
			testsupport.AssertGolden(t, filepath.Join("testdata", tt.name+".golden"), result)
		})
	}
}

func TestEngine_RegisterFilterTwiceFails(t *testing.T) {
	engine := newEngine(t)
	if err := engine.RegisterFilter("field_id", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected builtin filter name to be rejected")
	}
}

func TestEngine_RenderDispatchesInlineSource(t *testing.T) {
	engine := newEngine(t)

	single, err := engine.Render(`{% if v|contains_value:"x" %}yes{% else %}no{% endif %}`, map[string]any{"v": "x"})
	if err != nil {
		t.Fatalf("render inline: %v", err)
	}
	if single != "yes" {
		t.Fatalf("expected scalar match, got %q", single)
	}

	named, err := engine.Render("hello", map[string]any{"name": "Grace"})
	if err != nil {
		t.Fatalf("render named: %v", err)
	}
	if !strings.HasPrefix(named, "Hello, Grace!") {
		t.Fatalf("unexpected named render %q", named)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
