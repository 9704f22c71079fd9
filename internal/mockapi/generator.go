package mockapi

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/goliatone/go-formchat/pkg/model"
)

// keywordRule adds field when any of its keywords appears in a prompt.
type keywordRule struct {
	keywords []string
	field    model.Field
}

func shorthand(values ...string) []model.Option {
	out := make([]model.Option, 0, len(values))
	for _, v := range values {
		out = append(out, model.StringOption(v))
	}
	return out
}

var rules = []keywordRule{
	{keywords: []string{"contact", "registration", "register", "signup", "sign up", "rsvp", "name"},
		field: model.Field{Label: "Full Name", Type: model.FieldTypeText, Required: true}},
	{keywords: []string{"contact", "registration", "register", "signup", "sign up", "newsletter", "email", "rsvp"},
		field: model.Field{Label: "Email", Type: model.FieldTypeText, Required: true}},
	{keywords: []string{"phone", "call", "mobile"},
		field: model.Field{Label: "Phone Number", Type: model.FieldTypeText}},
	{keywords: []string{"event", "appointment", "booking", "birthday", "date", "rsvp"},
		field: model.Field{Label: "Preferred Date", Type: model.FieldTypeDatePicker, Required: true}},
	{keywords: []string{"feedback", "survey", "satisfaction", "rating", "review"},
		field: model.Field{Label: "Rating", Type: model.FieldTypeRadio, Required: true, Options: shorthand("1", "2", "3", "4", "5")}},
	{keywords: []string{"department", "support", "ticket", "inquiry"},
		field: model.Field{Label: "Department", Type: model.FieldTypeDropdown, Required: true, Options: shorthand("Sales", "Support", "Billing")}},
	{keywords: []string{"size", "shirt", "merch"},
		field: model.Field{Label: "Size", Type: model.FieldTypeDropdown, Options: shorthand("S", "M", "L", "XL")}},
	{keywords: []string{"interest", "topic", "newsletter", "preferences"},
		field: model.Field{Label: "Interests", Type: model.FieldTypeCheckbox, Options: shorthand("Product updates", "Events", "Tips")}},
	{keywords: []string{"contact", "feedback", "message", "comment", "support", "ticket", "inquiry"},
		field: model.Field{Label: "Message", Type: model.FieldTypeTextArea, Required: true}},
}

// fallbackFields is used when no keyword matches.
var fallbackFields = model.Schema{
	{Label: "Full Name", Type: model.FieldTypeText, Required: true},
	{Label: "Email", Type: model.FieldTypeText, Required: true},
	{Label: "Comments", Type: model.FieldTypeTextArea},
}

var (
	addPattern      = regexp.MustCompile(`(?i)\badd(?: an?| the)?\s+(.+?)\s*$`)
	kindPattern     = regexp.MustCompile(`(?i)\s+(field|question|input|dropdown|select|checkboxes|checkbox|date ?picker|text ?area|radio(?: buttons?)?)$`)
	removePattern   = regexp.MustCompile(`(?i)\b(?:remove|delete|drop)(?: the)?\s+(.+?)(?:\s+(?:field|question|input))?\s*$`)
	requirePattern  = regexp.MustCompile(`(?i)\bmake(?: the)?\s+(.+?)(?:\s+(?:field|question))?\s+(required|optional|mandatory)\s*$`)
	optionsPattern  = regexp.MustCompile(`(?i)\bwith options?\s+(.+)$`)
	optionSeparator = regexp.MustCompile(`\s*(?:,|\bor\b|\band\b)\s*`)
)

// Generate builds a field list from a creation prompt.
func Generate(formName, message string) model.Schema {
	out := matchRules(formName + " " + message)
	if len(out) == 0 {
		return fallbackFields.Clone()
	}
	return out
}

func matchRules(prompt string) model.Schema {
	prompt = strings.ToLower(prompt)
	var out model.Schema
	seen := map[string]bool{}
	for _, rule := range rules {
		if !containsAny(prompt, rule.keywords) || seen[rule.field.ID()] {
			continue
		}
		seen[rule.field.ID()] = true
		out = append(out, rule.field.Clone())
	}
	return out
}

// Refine applies one follow-up instruction. It understands "add ...",
// "remove ..." and "make ... required|optional"; anything else merges the
// fields its keywords suggest. The result is always a complete list.
func Refine(current model.Schema, message string) model.Schema {
	next := current.Clone()
	for _, clause := range splitClauses(message) {
		next = refineClause(next, clause)
	}
	return next
}

func refineClause(fields model.Schema, clause string) model.Schema {
	if m := requirePattern.FindStringSubmatch(clause); m != nil {
		required := !strings.EqualFold(m[2], "optional")
		for i := range fields {
			if labelMatches(fields[i].Label, m[1]) {
				fields[i].Required = required
			}
		}
		return fields
	}
	if m := removePattern.FindStringSubmatch(clause); m != nil {
		kept := fields[:0:0]
		for _, field := range fields {
			if !labelMatches(field.Label, m[1]) {
				kept = append(kept, field)
			}
		}
		return kept
	}
	if m := addPattern.FindStringSubmatch(clause); m != nil {
		field := fieldFromPhrase(m[1])
		for _, existing := range fields {
			if existing.ID() == field.ID() {
				return fields
			}
		}
		return append(fields, field)
	}

	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		seen[field.ID()] = true
	}
	for _, field := range matchRules(clause) {
		if !seen[field.ID()] {
			fields = append(fields, field)
			seen[field.ID()] = true
		}
	}
	return fields
}

// fieldFromPhrase turns phrases such as "required size dropdown with options
// S, M or L" into a field.
func fieldFromPhrase(phrase string) model.Field {
	var options []model.Option
	if m := optionsPattern.FindStringSubmatchIndex(phrase); m != nil {
		for _, raw := range optionSeparator.Split(phrase[m[2]:m[3]], -1) {
			if v := strings.TrimSpace(raw); v != "" {
				options = append(options, model.StringOption(v))
			}
		}
		phrase = phrase[:m[0]]
	}
	phrase = strings.TrimSpace(phrase)

	required := false
	if lower := strings.ToLower(phrase); strings.HasPrefix(lower, "required ") || strings.HasPrefix(lower, "mandatory ") {
		required = true
		phrase = strings.TrimSpace(phrase[strings.Index(phrase, " "):])
	}
	kind := ""
	if m := kindPattern.FindStringSubmatchIndex(phrase); m != nil {
		kind = strings.ToLower(phrase[m[2]:m[3]])
		phrase = phrase[:m[0]]
	}

	label := titleCase(strings.TrimSpace(phrase))
	lower := strings.ToLower(label)

	field := model.Field{Label: label, Type: model.FieldTypeText, Required: required}
	switch {
	case strings.HasPrefix(kind, "dropdown"), kind == "select":
		field.Type = model.FieldTypeDropdown
	case strings.HasPrefix(kind, "checkbox"):
		field.Type = model.FieldTypeCheckbox
	case strings.HasPrefix(kind, "radio"):
		field.Type = model.FieldTypeRadio
	case strings.HasPrefix(kind, "date"), strings.Contains(lower, "date"), strings.Contains(lower, "birthday"):
		field.Type = model.FieldTypeDatePicker
	case strings.HasPrefix(kind, "text"), strings.Contains(lower, "message"), strings.Contains(lower, "comment"):
		field.Type = model.FieldTypeTextArea
	case len(options) > 0:
		field.Type = model.FieldTypeDropdown
	}

	switch field.Type {
	case model.FieldTypeDropdown, model.FieldTypeRadio, model.FieldTypeCheckbox:
		if len(options) == 0 {
			options = shorthand("Option 1", "Option 2", "Option 3")
		}
		field.Options = options
	}
	return field
}

func splitClauses(message string) []string {
	parts := strings.FieldsFunc(message, func(r rune) bool {
		return r == '.' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func labelMatches(label, phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(label), phrase)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
