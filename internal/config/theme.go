package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ThemeFile is the YAML shape of a theme manifest.
type ThemeFile struct {
	Name      string                      `yaml:"name"`
	Version   string                      `yaml:"version"`
	Tokens    map[string]string           `yaml:"tokens"`
	Templates map[string]string           `yaml:"templates"`
	Assets    ThemeAssets                 `yaml:"assets"`
	Variants  map[string]ThemeVariantFile `yaml:"variants"`
}

// ThemeAssets locates stylesheets and other theme files.
type ThemeAssets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

// ThemeVariantFile overrides parts of the base manifest.
type ThemeVariantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    ThemeAssets       `yaml:"assets"`
}

// Manifest converts the file into a go-theme manifest.
func (f ThemeFile) Manifest() *theme.Manifest {
	version := f.Version
	if version == "" {
		version = "1.0.0"
	}
	manifest := &theme.Manifest{
		Name:      f.Name,
		Version:   version,
		Tokens:    f.Tokens,
		Templates: f.Templates,
		Assets:    theme.Assets{Prefix: f.Assets.Prefix, Files: f.Assets.Files},
	}
	if len(f.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(f.Variants))
		for name, variant := range f.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}
	return manifest
}

// LoadTheme reads a theme manifest, registers it with a go-theme registry
// and resolves the renderer configuration for variant.
func LoadTheme(path, variant string) (*theme.RendererConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read theme %s: %w", path, err)
	}
	var file ThemeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: decode theme %s: %w", path, err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, fmt.Errorf("config: theme %s has no name", path)
	}

	manifest := file.Manifest()
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("config: register theme %s: %w", file.Name, err)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("config: theme %s has no variant %q", file.Name, variant)
		}
	}
	return RendererConfig(manifest, variant), nil
}

// RendererConfig flattens a manifest and optional variant into the
// configuration renderers consume. Variant tokens, templates and asset
// files override the base ones.
func RendererConfig(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	tokens := copyMap(manifest.Tokens)
	partials := copyMap(manifest.Templates)
	files := copyMap(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if v, ok := manifest.Variants[variant]; ok {
		mergeMap(tokens, v.Tokens)
		mergeMap(partials, v.Templates)
		mergeMap(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cssVars["--"+strings.TrimPrefix(key, "--")] = tokens[key]
	}

	return &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") || strings.HasPrefix(file, "/") {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + file
		},
	}
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeMap(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
