// Package vanilla renders schemas as plain HTML forms using pongo2 templates.
// Each field resolves through the widget dispatch table to a component
// template; theme tokens become CSS custom properties on the form.
package vanilla
