// Package formchat is the top-level entry point for embedding the form
// conversation engine. It wires the collaborator client into the controller
// and submission service and exposes the built-in HTML renderer.
package formchat

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/renderers/vanilla"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/submission"
)

// Schema is the ordered field list of a form.
type Schema = model.Schema

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface validation errors.
type RenderOptions = render.RenderOptions

// NewController builds a conversation controller backed by the collaborator
// service. Generated schemas are sanitized before options run.
func NewController(c *client.Client, options ...conversation.Option) (*conversation.Controller, error) {
	opts := append([]conversation.Option{conversation.WithDecorators(schema.NewSanitizer())}, options...)
	return conversation.NewController(client.NewGenerator(c), client.NewPublisher(c), opts...)
}

// NewSubmissionService builds the fill and submit flow over the collaborator
// service.
func NewSubmissionService(c *client.Client, options ...submission.Option) (*submission.Service, error) {
	opts := append([]submission.Option{submission.WithDecorators(schema.NewSanitizer())}, options...)
	return submission.NewService(client.NewStore(c), opts...)
}

// ParseSchema decodes a field list in any of the wire shapes the
// collaborator emits.
func ParseSchema(raw []byte) (Schema, error) {
	return schema.Parse(raw)
}

// RenderHTML renders fields with the vanilla renderer and its default
// stylesheet.
func RenderHTML(ctx context.Context, id string, fields Schema, options RenderOptions) ([]byte, error) {
	r, err := vanilla.New(vanilla.WithDefaultStyles())
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, render.Form{ID: id, Fields: fields}, options)
}

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the default stylesheet for serving over HTTP.
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
