package model

import (
	"strings"
	"unicode"
)

// labelSpace matches what browsers treat as whitespace in labels: Unicode
// spaces plus the byte order mark.
func labelSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// DeriveID computes the stable identifier for a label: surrounding
// whitespace is dropped, the label is lowercased, and every whitespace run
// becomes a single underscore.
func DeriveID(label string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(label, labelSpace), "_"))
}

// DuplicateIDs returns the derived identifiers shared by more than one field,
// in the order their first collision is observed.
func DuplicateIDs(fields []Field) []string {
	seen := make(map[string]int, len(fields))
	var dupes []string
	for _, field := range fields {
		id := field.ID()
		seen[id]++
		if seen[id] == 2 {
			dupes = append(dupes, id)
		}
	}
	return dupes
}
