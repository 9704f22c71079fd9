// Package render defines the renderer contract shared by the HTML and
// terminal front ends, plus helpers that turn validation results into inline
// error feedback.
package render
