package render

import (
	"context"

	"github.com/goliatone/go-formchat/pkg/model"
)

// Form is the unit handed to renderers: a schema plus the identity of the
// form it belongs to.
type Form struct {
	ID     string
	Name   string
	Fields model.Schema
}

// Renderer converts a Form into a byte representation (HTML, terminal
// answers, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form Form, options RenderOptions) ([]byte, error)
}
