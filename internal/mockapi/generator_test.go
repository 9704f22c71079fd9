package mockapi

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/model"
)

func TestGenerate_ContactPrompt(t *testing.T) {
	got := Generate("Contact", "a contact form with name, email and message")
	want := []string{"full_name", "email", "message"}
	if diff := cmp.Diff(want, got.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, field := range got {
		if !field.Required {
			t.Fatalf("expected %q to be required", field.Label)
		}
	}
}

func TestGenerate_FallbackWhenNothingMatches(t *testing.T) {
	got := Generate("", "something unusual")
	if diff := cmp.Diff(fallbackFields, got); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
	got[0].Label = "mutated"
	if fallbackFields[0].Label == "mutated" {
		t.Fatalf("Generate must return a copy of the fallback")
	}
}

func TestGenerate_ChoiceFieldsCarryOptions(t *testing.T) {
	got := Generate("Feedback", "rate our service")
	var rating model.Field
	for _, f := range got {
		if f.ID() == "rating" {
			rating = f
		}
	}
	if rating.Type != model.FieldTypeRadio || len(rating.Options) != 5 {
		t.Fatalf("unexpected rating field: %+v", rating)
	}
}

func TestRefine_Instructions(t *testing.T) {
	base := model.Schema{
		{Label: "Full Name", Type: model.FieldTypeText, Required: true},
		{Label: "Email", Type: model.FieldTypeText, Required: true},
		{Label: "Phone Number", Type: model.FieldTypeText},
	}

	cases := []struct {
		name    string
		message string
		want    model.Schema
	}{
		{
			name:    "remove by label fragment",
			message: "remove the phone field",
			want:    base[:2],
		},
		{
			name:    "make optional",
			message: "make email optional",
			want: model.Schema{
				base[0],
				{Label: "Email", Type: model.FieldTypeText},
				base[2],
			},
		},
		{
			name:    "add dropdown with options",
			message: "add a required size dropdown with options S, M or L",
			want: append(base.Clone(), model.Field{
				Label: "Size", Type: model.FieldTypeDropdown, Required: true,
				Options: []model.Option{model.StringOption("S"), model.StringOption("M"), model.StringOption("L")},
			}),
		},
		{
			name:    "add date by label",
			message: "add a start date field",
			want:    append(base.Clone(), model.Field{Label: "Start Date", Type: model.FieldTypeDatePicker}),
		},
		{
			name:    "duplicate add is ignored",
			message: "add email",
			want:    base,
		},
		{
			name:    "several clauses",
			message: "Remove phone. Add a comments textarea",
			want:    append(base[:2].Clone(), model.Field{Label: "Comments", Type: model.FieldTypeTextArea}),
		},
		{
			name:    "keywords merge new fields",
			message: "we also want a rating",
			want: append(base.Clone(), model.Field{
				Label: "Rating", Type: model.FieldTypeRadio, Required: true,
				Options: shorthand("1", "2", "3", "4", "5"),
			}),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Refine(base, tc.message)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("refined schema mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if base[1].Required != true || len(base) != 3 {
		t.Fatalf("Refine must not mutate its input: %+v", base)
	}
}
