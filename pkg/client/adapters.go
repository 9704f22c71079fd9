package client

import (
	"context"
	"errors"

	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/submission"
)

// Generator adapts the chat endpoints to conversation.Generator.
type Generator struct {
	client *Client
}

var _ conversation.Generator = (*Generator)(nil)

// NewGenerator wraps c.
func NewGenerator(c *Client) *Generator {
	return &Generator{client: c}
}

// Create posts the first prompt and decodes llmResponse. A decode failure is
// returned as a *schema.ParseError alongside the form identity.
func (g *Generator) Create(ctx context.Context, name, message string) (conversation.Generation, error) {
	resp, err := g.client.CreateForm(ctx, CreateFormRequest{FormName: name, Message: message})
	if err != nil {
		return conversation.Generation{}, err
	}
	gen := conversation.Generation{
		FormID:   resp.FormPublicID.String(),
		FormName: resp.FormName,
	}
	if gen.FormID == "" {
		return gen, &TransportError{Op: "create form", Err: errors.New("response has no formPublicId")}
	}
	fields, err := schema.DecodeLLMResponse(resp.LLMResponse)
	if err != nil {
		return gen, err
	}
	gen.Fields = fields
	return gen, nil
}

// Refine sends a follow-up prompt and decodes the doubly encoded formJson.
func (g *Generator) Refine(ctx context.Context, formID, message string) (conversation.Generation, error) {
	resp, err := g.client.Refine(ctx, formID, RefineRequest{Message: message})
	if err != nil {
		return conversation.Generation{}, err
	}
	fields, err := schema.DecodeRefinement(resp.FormJSON)
	if err != nil {
		return conversation.Generation{FormID: formID}, err
	}
	return conversation.Generation{FormID: formID, Fields: fields}, nil
}

// Publisher adapts the finaljson endpoint to conversation.Publisher.
type Publisher struct {
	client *Client
}

var _ conversation.Publisher = (*Publisher)(nil)

// NewPublisher wraps c.
func NewPublisher(c *Client) *Publisher {
	return &Publisher{client: c}
}

// Publish serializes fields as finalJson.
func (p *Publisher) Publish(ctx context.Context, formID string, fields model.Schema) error {
	finalJSON, err := schema.Serialize(fields)
	if err != nil {
		return err
	}
	return p.client.PublishFinal(ctx, formID, FinalJSON{FinalJSON: finalJSON})
}

// Store adapts the public form and submission endpoints to
// submission.Store.
type Store struct {
	client *Client
}

var _ submission.Store = (*Store)(nil)

// NewStore wraps c.
func NewStore(c *Client) *Store {
	return &Store{client: c}
}

// LoadPublished returns the raw finalJson.
func (s *Store) LoadPublished(ctx context.Context, formID string) (string, error) {
	resp, err := s.client.LoadFinal(ctx, formID)
	if err != nil {
		return "", err
	}
	return resp.FinalJSON, nil
}

// Submit encodes rows as formData.
func (s *Store) Submit(ctx context.Context, formID, email string, rows []model.SubmittedField) error {
	formData, err := schema.EncodeSubmittedData(rows)
	if err != nil {
		return err
	}
	return s.client.Submit(ctx, formID, SubmitRequest{Email: email, FormData: formData})
}

// Submissions lists stored rows without decoding submittedData.
func (s *Store) Submissions(ctx context.Context, formID string) ([]submission.StoredSubmission, error) {
	rows, err := s.client.Submissions(ctx, formID)
	if err != nil {
		return nil, err
	}
	out := make([]submission.StoredSubmission, len(rows))
	for idx, row := range rows {
		out[idx] = submission.StoredSubmission{
			ID:            row.ID.String(),
			Email:         row.Email,
			SubmittedData: row.SubmittedData,
			SubmittedAt:   row.SubmittedAt.Time,
		}
	}
	return out, nil
}

// Model converts the wire row to the domain summary.
func (f FormSummary) Model() model.FormSummary {
	return model.FormSummary{
		ID:        f.ID.String(),
		Title:     f.Title,
		PublicID:  f.PublicID.String(),
		CreatedAt: f.CreatedAt.Time,
	}
}
