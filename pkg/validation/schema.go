package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

// SchemaIssue represents a problem found in an ingested schema.
type SchemaIssue struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures ingestion checks. Issues are reported,
// never fatal: the schema is still rendered as far as possible.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// ValidateSchema reports unknown types, option lists that break the
// choice-type rule, empty labels and colliding derived ids.
func ValidateSchema(fields model.Schema) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	add := func(idx int, field, format string, args ...any) {
		result.Valid = false
		result.Issues = append(result.Issues, SchemaIssue{
			Index:   idx,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	firstIndex := make(map[string]int, len(fields))
	for idx, field := range fields {
		id := field.ID()
		if strings.TrimSpace(field.Label) == "" {
			add(idx, id, "field %d has an empty label", idx)
		}
		if _, ok := widgets.Lookup(field.Type); !ok {
			add(idx, id, "field %q has unsupported type %q and will not render", field.Label, field.Type)
		} else if field.Type.HasOptions() && len(field.Options) == 0 {
			add(idx, id, "field %q of type %q has no options", field.Label, field.Type)
		} else if !field.Type.HasOptions() && len(field.Options) > 0 {
			add(idx, id, "field %q of type %q must not declare options", field.Label, field.Type)
		}
		if id == "" {
			continue
		}
		if first, seen := firstIndex[id]; seen {
			add(idx, id, "field %q shares id %q with field %d; the later value wins", field.Label, id, first)
			continue
		}
		firstIndex[id] = idx
	}
	return result
}

// Decorator returns a model.Decorator that reports ingestion issues to fn
// without failing.
func Decorator(fn func(SchemaValidationResult)) model.Decorator {
	return model.DecoratorFunc(func(fields *model.Schema) error {
		if fields == nil || fn == nil {
			return nil
		}
		if result := ValidateSchema(*fields); !result.Valid {
			fn(result)
		}
		return nil
	})
}
