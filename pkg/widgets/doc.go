// Package widgets is the single dispatch table pairing each field type with
// its widget and its required-value rule. Renderers and the submission
// validator both consult it, so the two cannot disagree about a type.
package widgets
