package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/validation"
)

func contactFields() []model.Field {
	return []model.Field{
		{Label: "Name", Type: model.FieldTypeText, Required: true},
		{Label: "Email", Type: model.FieldTypeText, Required: true},
		{Label: "Message", Type: model.FieldTypeTextArea, Required: false},
	}
}

func TestValidate_ContactFormMissingName(t *testing.T) {
	result := validation.Validate(contactFields(), map[string]any{
		"name":    "",
		"email":   "ada@example.com",
		"message": "hello",
	})
	want := validation.Result{OK: false, MissingLabels: []string{"Name"}}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if got := result.Message(); got != "Please fill in all required fields:\nName" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestValidate_DropdownRequired(t *testing.T) {
	fields := []model.Field{{
		Label:    "Choice",
		Type:     model.FieldTypeDropdown,
		Required: true,
		Options:  []model.Option{model.StringOption("A"), model.StringOption("B")},
	}}

	if result := validation.Validate(fields, map[string]any{"choice": "A"}); !result.OK {
		t.Fatalf("expected ok, got %+v", result)
	}
	if result := validation.Validate(fields, map[string]any{"choice": ""}); result.OK {
		t.Fatalf("expected failure for empty selection")
	}
}

func TestValidate_MissingValueRule(t *testing.T) {
	fields := []model.Field{
		{Label: "Full Name", Type: model.FieldTypeText, Required: true},
		{Label: "Bio", Type: model.FieldTypeTextArea, Required: true},
		{Label: "Start", Type: model.FieldTypeDatePicker, Required: true},
		{Label: "Size", Type: model.FieldTypeRadio, Required: true, Options: []model.Option{model.StringOption("S")}},
		{Label: "Tags", Type: model.FieldTypeDropdown, Required: true, Options: []model.Option{model.StringOption("x")}},
		{Label: "Extras", Type: model.FieldTypeCheckbox, Required: true, Options: []model.Option{model.StringOption("Wifi")}},
		{Label: "Rating", Type: "stars", Required: true},
		{Label: "Notes", Type: model.FieldTypeText},
	}
	values := map[string]any{
		"full_name": "   ",
		"bio":       nil,
		"tags":      []any{},
		"extras":    []any{},
	}
	result := validation.Validate(fields, values)
	want := []string{"Full Name", "Bio", "Start", "Size", "Tags"}
	if diff := cmp.Diff(want, result.MissingLabels); diff != "" {
		t.Fatalf("missing labels mismatch (-want +got):\n%s", diff)
	}
	if result.OK {
		t.Fatalf("expected failure")
	}
}

func TestValidate_OKIffNothingMissing(t *testing.T) {
	result := validation.Validate(contactFields(), map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	if !result.OK || len(result.MissingLabels) != 0 {
		t.Fatalf("expected ok, got %+v", result)
	}
	if result.Err() != nil || result.Message() != "" {
		t.Fatalf("expected no error for ok result")
	}
	if empty := validation.Validate(nil, nil); !empty.OK {
		t.Fatalf("empty schema must validate")
	}
}

func TestResult_ErrIsValidationKind(t *testing.T) {
	err := validation.Validate(contactFields(), map[string]any{}).Err()
	if !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *validation.Error")
	}
	if vErr.Kind() != model.KindValidation {
		t.Fatalf("unexpected kind %q", vErr.Kind())
	}
	if diff := cmp.Diff([]string{"Name", "Email"}, vErr.MissingLabels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCreate(t *testing.T) {
	if err := validation.ValidateCreate("Contact", "contact form"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	err := validation.ValidateCreate(" ", "")
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *validation.Error, got %v", err)
	}
	want := map[string]string{"formName": "Form name required", "message": "Message required"}
	if diff := cmp.Diff(want, vErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if validation.ValidateMessage("\t") == nil {
		t.Fatalf("expected blank message to fail")
	}
}

func TestBindValues(t *testing.T) {
	fields := contactFields()
	bound := validation.BindValues(fields, map[string]any{"name": "Ada", "email": "ada@example.com"})
	want := []model.SubmittedField{
		{Field: fields[0], Value: "Ada"},
		{Field: fields[1], Value: "ada@example.com"},
		{Field: fields[2], Value: ""},
	}
	if diff := cmp.Diff(want, bound); diff != "" {
		t.Fatalf("bound mismatch (-want +got):\n%s", diff)
	}
	if got := validation.SubmitterEmail(map[string]any{"email": " ada@example.com "}); got != "ada@example.com" {
		t.Fatalf("submitter email = %q", got)
	}
}

func TestValidateSchema_ReportsIssues(t *testing.T) {
	fields := model.Schema{
		{Label: "Name", Type: model.FieldTypeText},
		{Label: "name", Type: model.FieldTypeTextArea},
		{Label: "Colour", Type: model.FieldTypeDropdown},
		{Label: "Notes", Type: model.FieldTypeText, Options: []model.Option{model.StringOption("x")}},
		{Label: "Stars", Type: "rating"},
		{Label: "", Type: model.FieldTypeText},
	}
	result := validation.ValidateSchema(fields)
	if result.Valid {
		t.Fatalf("expected issues")
	}
	var indexes []int
	for _, issue := range result.Issues {
		indexes = append(indexes, issue.Index)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, indexes); diff != "" {
		t.Fatalf("issue indexes mismatch (-want +got):\n%s", diff)
	}

	clean := validation.ValidateSchema(model.Schema{{Label: "Name", Type: model.FieldTypeText}})
	if !clean.Valid || len(clean.Issues) != 0 {
		t.Fatalf("expected clean schema, got %+v", clean)
	}
}

func TestDecorator_ReportsWithoutFailing(t *testing.T) {
	var reported validation.SchemaValidationResult
	fields := model.Schema{{Label: "X", Type: "nope"}}
	decorator := validation.Decorator(func(result validation.SchemaValidationResult) { reported = result })
	if err := model.ApplyDecorators(&fields, decorator); err != nil {
		t.Fatalf("decorator must not fail: %v", err)
	}
	if reported.Valid || len(reported.Issues) != 1 {
		t.Fatalf("unexpected report %+v", reported)
	}
}
