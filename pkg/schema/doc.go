// Package schema decodes and encodes field schemas in the shapes the
// generation service produces. Besides plain JSON arrays it unwraps
// string-encoded payloads and the `{"fields": [...]}` envelope, and offers a
// degrade-to-empty entry point for callers that must keep going on malformed
// input.
package schema
