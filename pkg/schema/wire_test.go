package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/schema"
)

func TestDecodeLLMResponse(t *testing.T) {
	raw := `{"fields":[{"label":"Name","type":"text","required":true},{"label":"Email","type":"text","required":true},{"label":"Message","type":"textarea","required":false}]}`
	got, err := schema.DecodeLLMResponse(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(contactSchema(), got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRefinement_TwoLevels(t *testing.T) {
	inner := `{"fields":[{"label":"Phone","type":"text","required":false}]}`
	outer, _ := json.Marshal(map[string]string{"response": inner})

	got, err := schema.DecodeRefinement(string(outer))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.Schema{{Label: "Phone", Type: model.FieldTypeText}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	// A single-level decode leaves the inner payload as a string.
	var single struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(outer, &single); err != nil {
		t.Fatalf("single level: %v", err)
	}
	if single.Response != inner {
		t.Fatalf("expected inner payload to remain encoded, got %q", single.Response)
	}

	quotedOuter, _ := json.Marshal(string(outer))
	again, err := schema.DecodeRefinement(string(quotedOuter))
	if err != nil {
		t.Fatalf("decode quoted: %v", err)
	}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Fatalf("quoted schema mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRefinement_Errors(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":       "",
		"no response": `{"other":"x"}`,
		"bad inner":   `{"response":"{not json"}`,
		"not object":  `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := schema.DecodeRefinement(raw)
			var parseErr *schema.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
		})
	}
}

func TestDecodeFinalJSON_MalformedIsParseError(t *testing.T) {
	if _, err := schema.DecodeFinalJSON(`[{"label":"x",`); err == nil {
		t.Fatalf("expected parse error")
	}
	got, err := schema.DecodeFinalJSON(`[{"label":"Email","type":"text","required":true}]`)
	if err != nil || len(got) != 1 {
		t.Fatalf("decode = %#v, %v", got, err)
	}
}

func TestSubmittedData_RoundTrip(t *testing.T) {
	rows := []model.SubmittedField{
		{Field: model.Field{Label: "Name", Type: model.FieldTypeText, Required: true}, Value: "Ada"},
		{Field: model.Field{Label: "Extras", Type: model.FieldTypeCheckbox, Options: []model.Option{model.StringOption("Wifi")}}, Value: []any{"Wifi"}},
	}
	encoded, err := schema.EncodeSubmittedData(rows)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := schema.DecodeSubmittedData(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(rows, decoded); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	empty, err := schema.DecodeSubmittedData("")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty submitted data = %#v, %v", empty, err)
	}
	if _, err := schema.DecodeSubmittedData("{"); err == nil {
		t.Fatalf("expected parse error")
	}
}
