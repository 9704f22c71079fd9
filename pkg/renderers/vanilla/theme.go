package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// themeContext flattens a resolved theme into template data: identity, a
// CSS custom property rule and the partial overrides.
func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"style":   cssVarRule(cfg),
	}
}

func themePartials(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil || len(cfg.Partials) == 0 {
		return nil
	}
	out := make(map[string]string, len(cfg.Partials))
	for key, value := range cfg.Partials {
		out[key] = value
	}
	return out
}

func themeStylesheets(cfg *theme.RendererConfig) []string {
	if cfg == nil || cfg.AssetURL == nil {
		return nil
	}
	if href := strings.TrimSpace(cfg.AssetURL(ThemeStylesheetKey)); href != "" {
		return []string{href}
	}
	return nil
}

// cssVarRule renders the theme's CSS variables as one rule scoped to the form.
// Tokens without an explicit CSS variable are exposed as --<token>.
func cssVarRule(cfg *theme.RendererConfig) string {
	vars := make(map[string]string, len(cfg.CSSVars)+len(cfg.Tokens))
	for token, value := range cfg.Tokens {
		vars["--"+token] = value
	}
	for name, value := range cfg.CSSVars {
		vars[name] = value
	}
	if len(vars) == 0 {
		return ""
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		if cleanCSS(name) == "" || cleanCSS(vars[name]) == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)

	var builder strings.Builder
	builder.WriteString(".fc-form {")
	for _, name := range names {
		builder.WriteString(" ")
		builder.WriteString(cleanCSS(name))
		builder.WriteString(": ")
		builder.WriteString(cleanCSS(vars[name]))
		builder.WriteString(";")
	}
	builder.WriteString(" }")
	return builder.String()
}

// cleanCSS drops characters that could close the declaration or the style
// element.
func cleanCSS(value string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '{', '}', ';', '\n', '\r':
			return -1
		}
		return r
	}, value))
}
