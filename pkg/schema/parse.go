package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/model"
)

// maxStringDepth bounds how many string-within-a-string layers Parse unwraps.
const maxStringDepth = 3

var (
	ErrEmpty         = errors.New("schema: payload is empty")
	ErrTooDeep       = errors.New("schema: payload nested in too many string layers")
	ErrUnexpected    = errors.New("schema: payload is not a field list")
	ErrMissingFields = errors.New("schema: object payload has no fields key")
)

// ParseError reports a schema payload that could not be decoded.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stage == "" {
		return fmt.Sprintf("schema: parse: %v", e.Err)
	}
	return fmt.Sprintf("schema: parse %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind implements model.KindError.
func (e *ParseError) Kind() model.ErrorKind { return model.KindParse }

// Parse decodes a field list. It accepts a JSON array of fields, a JSON
// string whose content is such an array, or an object carrying the array
// under "fields". The result is never nil on success.
func Parse(raw []byte) (model.Schema, error) {
	return parse(raw, "", 0)
}

func parse(raw []byte, stage string, depth int) (model.Schema, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, &ParseError{Stage: stage, Err: ErrEmpty}
	}

	switch data[0] {
	case '"':
		if depth >= maxStringDepth {
			return nil, &ParseError{Stage: stage, Err: ErrTooDeep}
		}
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, &ParseError{Stage: stageName(stage, "string"), Err: err}
		}
		return parse([]byte(inner), stage, depth+1)
	case '[':
		var fields model.Schema
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, &ParseError{Stage: stageName(stage, "fields"), Err: err}
		}
		if fields == nil {
			fields = model.Schema{}
		}
		return fields, nil
	case '{':
		var envelope struct {
			Fields json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, &ParseError{Stage: stageName(stage, "envelope"), Err: err}
		}
		if len(envelope.Fields) == 0 {
			return nil, &ParseError{Stage: stageName(stage, "envelope"), Err: ErrMissingFields}
		}
		return parse(envelope.Fields, stageName(stage, "envelope"), depth)
	default:
		return nil, &ParseError{Stage: stage, Err: ErrUnexpected}
	}
}

// ParseOrEmpty parses raw and degrades to an empty schema on failure,
// recording a diagnostic on the context logger. It never returns nil.
func ParseOrEmpty(ctx context.Context, raw []byte, source string) model.Schema {
	fields, err := Parse(raw)
	if err != nil {
		logger.From(ctx).Warn().
			Err(err).
			Str("component", "schema").
			Str("source", source).
			Int("bytes", len(raw)).
			Msg("schema payload could not be parsed; using an empty field list")
		return model.Schema{}
	}
	return fields
}

// Serialize encodes a schema as the JSON text of its field array, the form
// the publish endpoint stores as finalJson.
func Serialize(fields model.Schema) (string, error) {
	if fields == nil {
		fields = model.Schema{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("schema: serialize: %w", err)
	}
	return string(data), nil
}

func stageName(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
