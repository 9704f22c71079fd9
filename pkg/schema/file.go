package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formchat/pkg/model"
)

// LoadFile reads a schema fixture from disk. JSON and YAML are accepted, in
// any of the shapes Parse understands.
func LoadFile(path string) (model.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Unmarshal(data, path)
}

// LoadFS reads a schema fixture from fsys.
func LoadFS(fsys fs.FS, path string) (model.Schema, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: file system is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Unmarshal(data, path)
}

// Unmarshal decodes a fixture, trying JSON first and falling back to YAML.
// source names the document in error messages; a .yaml/.yml extension skips
// the JSON attempt.
func Unmarshal(data []byte, source string) (model.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	if !isYAML(source) {
		if fields, err := Parse(data); err == nil {
			return fields, nil
		}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
	}
	normalised, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	fields, err := Parse(normalised)
	if err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return fields, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
