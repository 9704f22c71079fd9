package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formchat/pkg/model"
)

// DecodeLLMResponse decodes the llmResponse field returned by the create
// endpoint: JSON text holding `{"fields": [...]}`.
func DecodeLLMResponse(llmResponse string) (model.Schema, error) {
	return parse([]byte(llmResponse), "llmResponse", 0)
}

// DecodeRefinement decodes the formJson field returned by the refine
// endpoint. The payload is encoded twice: formJson holds `{"response": "..."}`
// and the response string holds `{"fields": [...]}`.
func DecodeRefinement(formJSON string) (model.Schema, error) {
	outer := []byte(strings.TrimSpace(formJSON))
	// Some responses wrap the outer object in one more string layer.
	for depth := 0; len(outer) > 0 && outer[0] == '"'; depth++ {
		if depth >= maxStringDepth {
			return nil, &ParseError{Stage: "formJson", Err: ErrTooDeep}
		}
		var inner string
		if err := json.Unmarshal(outer, &inner); err != nil {
			return nil, &ParseError{Stage: "formJson", Err: err}
		}
		outer = bytes.TrimSpace([]byte(inner))
	}
	if len(outer) == 0 {
		return nil, &ParseError{Stage: "formJson", Err: ErrEmpty}
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(outer, &envelope); err != nil {
		return nil, &ParseError{Stage: "formJson", Err: err}
	}
	if len(envelope.Response) == 0 {
		return nil, &ParseError{Stage: "formJson", Err: fmt.Errorf("schema: formJson has no response key")}
	}
	return parse(envelope.Response, "formJson.response", 0)
}

// DecodeFinalJSON decodes a published schema stored as finalJson.
func DecodeFinalJSON(finalJSON string) (model.Schema, error) {
	return parse([]byte(finalJSON), "finalJson", 0)
}

// DecodeSubmittedData decodes the submittedData field of a submission row.
// An empty payload is treated as an empty list.
func DecodeSubmittedData(submittedData string) ([]model.SubmittedField, error) {
	data := []byte(strings.TrimSpace(submittedData))
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []model.SubmittedField{}, nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, &ParseError{Stage: "submittedData", Err: err}
		}
		return DecodeSubmittedData(inner)
	}
	var rows []model.SubmittedField
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &ParseError{Stage: "submittedData", Err: err}
	}
	if rows == nil {
		rows = []model.SubmittedField{}
	}
	return rows, nil
}

// EncodeSubmittedData encodes bound values as the formData payload of the
// submit endpoint.
func EncodeSubmittedData(rows []model.SubmittedField) (string, error) {
	if rows == nil {
		rows = []model.SubmittedField{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("schema: encode submitted data: %w", err)
	}
	return string(data), nil
}
