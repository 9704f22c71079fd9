package conversation

import (
	"context"
	"time"

	"github.com/goliatone/go-formchat/pkg/model"
)

// Generation is a decoded response from the generation service.
type Generation struct {
	FormID   string
	FormName string
	Fields   model.Schema
	// Reply is optional agent text shown in the conversation log.
	Reply string
}

// Generator produces and refines field lists.
type Generator interface {
	Create(ctx context.Context, name, message string) (Generation, error)
	Refine(ctx context.Context, formID, message string) (Generation, error)
}

// Publisher persists the final field list of a form.
type Publisher interface {
	Publish(ctx context.Context, formID string, fields model.Schema) error
}

// GeneratorFuncs adapts plain functions into a Generator.
type GeneratorFuncs struct {
	CreateFunc func(ctx context.Context, name, message string) (Generation, error)
	RefineFunc func(ctx context.Context, formID, message string) (Generation, error)
}

func (g GeneratorFuncs) Create(ctx context.Context, name, message string) (Generation, error) {
	return g.CreateFunc(ctx, name, message)
}

func (g GeneratorFuncs) Refine(ctx context.Context, formID, message string) (Generation, error) {
	return g.RefineFunc(ctx, formID, message)
}

// PublisherFunc adapts a function into a Publisher.
type PublisherFunc func(ctx context.Context, formID string, fields model.Schema) error

func (fn PublisherFunc) Publish(ctx context.Context, formID string, fields model.Schema) error {
	return fn(ctx, formID, fields)
}

// Recorder receives transition metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveTransition(transition, outcome string, elapsed time.Duration)
	TrackInFlight() func()
	RejectBusy(transition string)
	ValidationFailed(scope string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string, time.Duration) {}
func (nopRecorder) TrackInFlight() func()                           { return func() {} }
func (nopRecorder) RejectBusy(string)                               {}
func (nopRecorder) ValidationFailed(string)                         {}
