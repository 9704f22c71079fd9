// Package model defines the form schema exchanged with the generation service
// and consumed by renderers and the submission validator. A Schema is an
// ordered list of Fields drawn from a closed set of six types (text, textarea,
// dropdown, radio, checkbox, datepicker); choice types carry Options which may
// arrive as `{id,label}` objects or as bare strings. Each field binds submitted
// values through DeriveID(label), the lowercased label with whitespace runs
// collapsed to underscores. FormDraft, ChatMessage and Submission describe the
// conversation aggregate and the answers collected against a published schema.
package model
