// Package submission loads published schemas for respondents and gates the
// final submit behind the required-field validator.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/validation"
	"github.com/goliatone/go-formchat/pkg/widgets"
)

// StoredSubmission is a submission row as the persistence service returns
// it, before submittedData is decoded.
type StoredSubmission struct {
	ID            string
	Email         string
	SubmittedData string
	SubmittedAt   time.Time
}

// Store is the persistence collaborator.
type Store interface {
	// LoadPublished returns the raw finalJson of a published form.
	LoadPublished(ctx context.Context, formID string) (string, error)
	// Submit stores one complete submission.
	Submit(ctx context.Context, formID, email string, rows []model.SubmittedField) error
	// Submissions lists stored submissions of a form.
	Submissions(ctx context.Context, formID string) ([]StoredSubmission, error)
}

// Recorder receives submission metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	ValidationFailed(scope string)
	ObserveSubmission(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ValidationFailed(string)  {}
func (nopRecorder) ObserveSubmission(string) {}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records submission outcomes.
func WithMetrics(rec Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithWidgetRegistry swaps the dispatch table used by the validator.
func WithWidgetRegistry(reg *widgets.Registry) Option {
	return func(s *Service) {
		if reg != nil {
			s.widgets = reg
		}
	}
}

// WithDecorators runs decorators over loaded schemas.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(s *Service) {
		s.decorators = append(s.decorators, decorators...)
	}
}

// Service is the respondent-facing flow over a Store.
type Service struct {
	store      Store
	metrics    Recorder
	widgets    *widgets.Registry
	decorators []model.Decorator
}

// NewService wraps store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("submission: store is required")
	}
	s := &Service{
		store:   store,
		metrics: nopRecorder{},
		widgets: widgets.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Load fetches the published schema of formID. A malformed finalJson yields
// an empty schema and a logged diagnostic; only transport errors are
// returned.
func (s *Service) Load(ctx context.Context, formID string) (model.Schema, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, errors.New("submission: form id is required")
	}
	raw, err := s.store.LoadPublished(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("submission: load %s: %w", formID, err)
	}
	fields := schema.ParseOrEmpty(ctx, []byte(raw), "finalJson:"+formID)
	if err := model.ApplyDecorators(&fields, s.decorators...); err != nil {
		logger.From(ctx).Warn().Err(err).Str("component", "submission").Str("form_id", formID).
			Msg("schema decorator failed; serving undecorated schema")
	}
	return fields, nil
}

// Submit validates values once and, when every required field has a value,
// sends the complete bound payload. The store is not called on a validation
// failure. An empty email falls back to the value bound to the "email" field.
func (s *Service) Submit(ctx context.Context, formID, email string, fields model.Schema, values map[string]any) error {
	result := validation.ValidateWith(s.widgets, fields, values)
	if !result.OK {
		s.metrics.ValidationFailed("submit")
		logger.From(ctx).Debug().Str("component", "submission").Str("form_id", formID).
			Strs("missing", result.MissingLabels).Msg("submission blocked by validator")
		return result.Err()
	}

	if strings.TrimSpace(email) == "" {
		email = validation.SubmitterEmail(values)
	}
	rows := validation.BindValues(fields, values)
	if err := s.store.Submit(ctx, formID, email, rows); err != nil {
		s.metrics.ObserveSubmission("failure")
		return fmt.Errorf("submission: submit %s: %w", formID, err)
	}
	s.metrics.ObserveSubmission("success")
	logger.From(ctx).Info().Str("component", "submission").Str("form_id", formID).
		Int("fields", len(rows)).Msg("submission stored")
	return nil
}

// List returns the submissions of formID with their rows decoded. Rows that
// cannot be decoded come back empty with a logged diagnostic.
func (s *Service) List(ctx context.Context, formID string) ([]model.Submission, error) {
	stored, err := s.store.Submissions(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("submission: list %s: %w", formID, err)
	}
	out := make([]model.Submission, 0, len(stored))
	for _, row := range stored {
		fields, err := schema.DecodeSubmittedData(row.SubmittedData)
		if err != nil {
			logger.From(ctx).Warn().Err(err).Str("component", "submission").
				Str("form_id", formID).Str("submission_id", row.ID).
				Msg("submitted data could not be parsed; showing no answers")
			fields = []model.SubmittedField{}
		}
		values := make(map[string]any, len(fields))
		for _, field := range fields {
			values[field.ID()] = field.Value
		}
		out = append(out, model.Submission{
			ID:             row.ID,
			FormID:         formID,
			SubmitterEmail: row.Email,
			Values:         values,
			Fields:         fields,
			SubmittedAt:    row.SubmittedAt,
		})
	}
	return out, nil
}
