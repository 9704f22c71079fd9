// Package testsupport holds schema fixtures and golden file helpers shared by
// the renderer tests.
package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/model"
)

// ContactSchema is the three-field contact form used across tests.
func ContactSchema() model.Schema {
	return model.Schema{
		{Label: "Name", Type: model.FieldTypeText, Required: true},
		{Label: "Email", Type: model.FieldTypeText, Required: true},
		{Label: "Message", Type: model.FieldTypeTextArea},
	}
}

// KitchenSinkSchema holds one field of every known type.
func KitchenSinkSchema() model.Schema {
	return model.Schema{
		{Label: "Full Name", Type: model.FieldTypeText, Required: true},
		{Label: "Bio", Type: model.FieldTypeTextArea},
		{Label: "Ticket Type", Type: model.FieldTypeDropdown, Required: true, Options: []model.Option{
			model.StringOption("General"),
			{ID: "vip", Label: "VIP"},
		}},
		{Label: "Size", Type: model.FieldTypeRadio, Options: []model.Option{
			{ID: "s", Label: "Small"},
			{ID: "l", Label: "Large"},
		}},
		{Label: "Extras", Type: model.FieldTypeCheckbox, Required: true, Options: []model.Option{
			model.StringOption("Parking"),
			model.StringOption("Lunch"),
		}},
		{Label: "Arrival", Type: model.FieldTypeDatePicker},
	}
}

// MustReadGoldenString reads a golden file or fails the test.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// AssertGolden compares got with the golden file at path. Setting
// UPDATE_GOLDENS rewrites the file instead.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	if diff := cmp.Diff(MustReadGoldenString(t, path), got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
