package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/validation"
)

type fakeGenerator struct {
	mu      sync.Mutex
	creates []string
	refines []string
	create  func(name, message string) (conversation.Generation, error)
	refine  func(formID, message string) (conversation.Generation, error)
}

func (g *fakeGenerator) Create(_ context.Context, name, message string) (conversation.Generation, error) {
	g.mu.Lock()
	g.creates = append(g.creates, message)
	g.mu.Unlock()
	if g.create == nil {
		return conversation.Generation{}, errors.New("unexpected create")
	}
	return g.create(name, message)
}

func (g *fakeGenerator) Refine(_ context.Context, formID, message string) (conversation.Generation, error) {
	g.mu.Lock()
	g.refines = append(g.refines, formID+":"+message)
	g.mu.Unlock()
	if g.refine == nil {
		return conversation.Generation{}, errors.New("unexpected refine")
	}
	return g.refine(formID, message)
}

type fakePublisher struct {
	calls  int
	fields model.Schema
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, fields model.Schema) error {
	p.calls++
	p.fields = fields
	return p.err
}

func contactFields() model.Schema {
	return model.Schema{
		{Label: "Name", Type: model.FieldTypeText, Required: true},
		{Label: "Email", Type: model.FieldTypeText, Required: true},
		{Label: "Message", Type: model.FieldTypeTextArea},
	}
}

func newController(t *testing.T, gen *fakeGenerator, pub *fakePublisher, opts ...conversation.Option) *conversation.Controller {
	t.Helper()
	seq := 0
	base := []conversation.Option{
		conversation.WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
		conversation.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("m%d", seq)
		}),
	}
	ctrl, err := conversation.NewController(gen, pub, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

func createdController(t *testing.T, gen *fakeGenerator, pub *fakePublisher) *conversation.Controller {
	t.Helper()
	if gen.create == nil {
		gen.create = func(name, _ string) (conversation.Generation, error) {
			return conversation.Generation{FormID: "f1", FormName: name, Fields: contactFields()}, nil
		}
	}
	ctrl := newController(t, gen, pub)
	if _, err := ctrl.CreatePrompt(context.Background(), "Contact", "Create a contact form with name, email, and message fields"); err != nil {
		t.Fatalf("create: %v", err)
	}
	return ctrl
}

func TestController_CreatePrompt(t *testing.T) {
	gen := &fakeGenerator{}
	ctrl := createdController(t, gen, &fakePublisher{})

	snap := ctrl.Snapshot()
	if snap.State != conversation.StateDrafted {
		t.Fatalf("state = %s, want drafted", snap.State)
	}
	if snap.Draft.ID != "f1" || snap.Draft.Name != "Contact" {
		t.Fatalf("unexpected draft identity: %+v", snap.Draft)
	}
	if diff := cmp.Diff(contactFields(), snap.Draft.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Draft.Messages) != 1 || snap.Draft.Messages[0].Status != model.MessageConfirmed {
		t.Fatalf("expected one confirmed user message, got %+v", snap.Draft.Messages)
	}

	result := validation.Validate(snap.Draft.Fields, map[string]any{"name": "", "email": "a@b.c", "message": "hi"})
	if diff := cmp.Diff([]string{"Name"}, result.MissingLabels); diff != "" || result.OK {
		t.Fatalf("expected Name to be missing (-want +got):\n%s", diff)
	}
}

func TestController_CreatePromptValidatesLocally(t *testing.T) {
	gen := &fakeGenerator{}
	ctrl := newController(t, gen, &fakePublisher{})

	for _, tc := range []struct{ name, message string }{{"", "hello"}, {"Form", "  "}, {"", ""}} {
		_, err := ctrl.CreatePrompt(context.Background(), tc.name, tc.message)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("CreatePrompt(%q, %q) error = %v, want validation error", tc.name, tc.message, err)
		}
	}
	if len(gen.creates) != 0 {
		t.Fatalf("expected no network call, got %d", len(gen.creates))
	}
	if ctrl.State() != conversation.StateEmpty {
		t.Fatalf("state = %s, want empty", ctrl.State())
	}
}

func TestController_CreateFailureResetsToEmpty(t *testing.T) {
	gen := &fakeGenerator{create: func(string, string) (conversation.Generation, error) {
		return conversation.Generation{}, errors.New("503 service unavailable")
	}}
	ctrl := newController(t, gen, &fakePublisher{})

	snap, err := ctrl.CreatePrompt(context.Background(), "Contact", "make it")
	var terr *conversation.TransitionError
	if !errors.As(err, &terr) || terr.From != conversation.StateEmpty {
		t.Fatalf("expected transition error rolling back to empty, got %v", err)
	}
	if snap.State != conversation.StateEmpty || snap.Busy {
		t.Fatalf("unexpected snapshot after failure: %+v", snap)
	}
	if !strings.Contains(snap.LastError, "503") {
		t.Fatalf("expected last error to be surfaced, got %q", snap.LastError)
	}
	if len(snap.Draft.Messages) != 1 || snap.Draft.Messages[0].Status != model.MessageFailed {
		t.Fatalf("expected failed message to stay in the log, got %+v", snap.Draft.Messages)
	}
}

func TestController_CreateWithoutFormIDResetsToEmpty(t *testing.T) {
	tests := []struct {
		name string
		gen  conversation.Generation
		err  error
	}{
		{name: "unparseable response", err: &schema.ParseError{Stage: "llmResponse", Err: errors.New("unexpected end of JSON input")}},
		{name: "fields without id", gen: conversation.Generation{Fields: contactFields()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			gen := &fakeGenerator{create: func(string, string) (conversation.Generation, error) {
				calls++
				if calls == 1 {
					return tt.gen, tt.err
				}
				return conversation.Generation{FormID: "f2", Fields: contactFields()}, nil
			}}
			ctrl := newController(t, gen, &fakePublisher{})

			snap, err := ctrl.CreatePrompt(context.Background(), "Contact", "make it")
			if !errors.Is(err, conversation.ErrNoFormID) {
				t.Fatalf("create error = %v, want ErrNoFormID", err)
			}
			if snap.State != conversation.StateEmpty || snap.Draft.ID != "" {
				t.Fatalf("expected reset to empty, got %+v", snap)
			}

			snap, err = ctrl.CreatePrompt(context.Background(), "Contact", "try again")
			if err != nil {
				t.Fatalf("retry create: %v", err)
			}
			if snap.State != conversation.StateDrafted || snap.Draft.ID != "f2" {
				t.Fatalf("expected drafted f2 after retry, got state %s id %q", snap.State, snap.Draft.ID)
			}
		})
	}
}

func TestController_RefinementsReplaceWholesale(t *testing.T) {
	responses := []model.Schema{
		{{Label: "Name", Type: model.FieldTypeText}, {Label: "Phone", Type: model.FieldTypeText}},
		{{Label: "Company", Type: model.FieldTypeText, Required: true}},
	}
	call := 0
	gen := &fakeGenerator{refine: func(string, string) (conversation.Generation, error) {
		fields := responses[call]
		call++
		return conversation.Generation{Fields: fields}, nil
	}}
	ctrl := createdController(t, gen, &fakePublisher{})

	if _, err := ctrl.SendMessage(context.Background(), "add a phone field"); err != nil {
		t.Fatalf("first refine: %v", err)
	}
	snap, err := ctrl.SendMessage(context.Background(), "replace everything with company")
	if err != nil {
		t.Fatalf("second refine: %v", err)
	}
	if diff := cmp.Diff(responses[1], snap.Draft.Fields); diff != "" {
		t.Fatalf("final schema should equal last response (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f1:add a phone field", "f1:replace everything with company"}, gen.refines); diff != "" {
		t.Fatalf("refine calls mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Draft.Messages) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(snap.Draft.Messages))
	}
}

func TestController_RefineFailureKeepsSchemaAndMessage(t *testing.T) {
	gen := &fakeGenerator{refine: func(string, string) (conversation.Generation, error) {
		return conversation.Generation{}, errors.New("connection reset")
	}}
	ctrl := createdController(t, gen, &fakePublisher{})

	snap, err := ctrl.SendMessage(context.Background(), "add age")
	if err == nil {
		t.Fatalf("expected error")
	}
	if snap.State != conversation.StateDrafted {
		t.Fatalf("state = %s, want drafted", snap.State)
	}
	if diff := cmp.Diff(contactFields(), snap.Draft.Fields); diff != "" {
		t.Fatalf("schema changed on failure (-want +got):\n%s", diff)
	}
	last := snap.Draft.Messages[len(snap.Draft.Messages)-1]
	if last.Text != "add age" || last.Status != model.MessageFailed || last.Error == "" {
		t.Fatalf("expected failed message entry, got %+v", last)
	}
}

func TestController_ParseFailureDegradesToEmptySchema(t *testing.T) {
	gen := &fakeGenerator{refine: func(string, string) (conversation.Generation, error) {
		_, err := schema.DecodeRefinement(`not json`)
		return conversation.Generation{}, err
	}}
	ctrl := createdController(t, gen, &fakePublisher{})

	snap, err := ctrl.SendMessage(context.Background(), "garble it")
	if err != nil {
		t.Fatalf("parse failure should degrade, got %v", err)
	}
	if snap.Draft.Fields == nil || len(snap.Draft.Fields) != 0 {
		t.Fatalf("expected empty non-nil schema, got %#v", snap.Draft.Fields)
	}
}

func TestController_RejectsWhileBusy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gen := &fakeGenerator{refine: func(string, string) (conversation.Generation, error) {
		close(entered)
		<-release
		return conversation.Generation{Fields: model.Schema{{Label: "Late", Type: model.FieldTypeText}}}, nil
	}}
	pub := &fakePublisher{}
	ctrl := createdController(t, gen, pub)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.SendMessage(context.Background(), "first")
		done <- err
	}()
	<-entered

	if snap := ctrl.Snapshot(); !snap.Busy || snap.State != conversation.StateAwaitingRefinement {
		t.Fatalf("expected busy refinement, got %+v", snap)
	}
	if _, err := ctrl.SendMessage(context.Background(), "second"); !errors.Is(err, conversation.ErrBusy) {
		t.Fatalf("second send error = %v, want ErrBusy", err)
	}
	if _, err := ctrl.Publish(context.Background()); !errors.Is(err, conversation.ErrBusy) {
		t.Fatalf("publish error = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("publisher should not have been called")
	}
	if len(gen.refines) != 1 {
		t.Fatalf("rejected message must not reach the generator, got %v", gen.refines)
	}
	snap := ctrl.Snapshot()
	for _, msg := range snap.Draft.Messages {
		if msg.Text == "second" {
			t.Fatalf("rejected message should not be logged")
		}
	}
}

func TestController_SendMessageGuards(t *testing.T) {
	ctrl := newController(t, &fakeGenerator{}, &fakePublisher{})
	if _, err := ctrl.SendMessage(context.Background(), "hello"); !errors.Is(err, conversation.ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
	if _, err := ctrl.Publish(context.Background()); !errors.Is(err, conversation.ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft on publish, got %v", err)
	}

	drafted := createdController(t, &fakeGenerator{}, &fakePublisher{})
	var verr *validation.Error
	if _, err := drafted.SendMessage(context.Background(), "   "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := drafted.CreatePrompt(context.Background(), "Again", "again"); !errors.Is(err, conversation.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestController_Publish(t *testing.T) {
	pub := &fakePublisher{}
	ctrl := createdController(t, &fakeGenerator{}, pub)

	published, err := ctrl.Publish(context.Background())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if diff := cmp.Diff(contactFields(), pub.fields); diff != "" {
		t.Fatalf("published fields mismatch (-want +got):\n%s", diff)
	}
	if ctrl.State() != conversation.StatePublished || !ctrl.Snapshot().Draft.Published {
		t.Fatalf("expected published state")
	}

	published[0].Label = "Mutated"
	if ctrl.Snapshot().Draft.Fields[0].Label != "Name" {
		t.Fatalf("published schema aliases the draft")
	}

	if _, err := ctrl.SendMessage(context.Background(), "more"); !errors.Is(err, conversation.ErrPublished) {
		t.Fatalf("expected ErrPublished, got %v", err)
	}
	if _, err := ctrl.Publish(context.Background()); !errors.Is(err, conversation.ErrPublished) {
		t.Fatalf("expected ErrPublished on second publish, got %v", err)
	}
}

func TestController_PublishFailureIsRetryable(t *testing.T) {
	pub := &fakePublisher{err: errors.New("500")}
	ctrl := createdController(t, &fakeGenerator{}, pub)

	if _, err := ctrl.Publish(context.Background()); err == nil {
		t.Fatalf("expected publish failure")
	}
	if ctrl.State() != conversation.StateDrafted {
		t.Fatalf("state = %s, want drafted", ctrl.State())
	}

	pub.err = nil
	if _, err := ctrl.Publish(context.Background()); err != nil {
		t.Fatalf("retry publish: %v", err)
	}
	if pub.calls != 2 {
		t.Fatalf("publisher calls = %d, want 2", pub.calls)
	}
}

func TestController_CallTimeoutFailsTransition(t *testing.T) {
	gen := &fakeGenerator{create: func(string, string) (conversation.Generation, error) {
		time.Sleep(50 * time.Millisecond)
		return conversation.Generation{FormID: "late", Fields: contactFields()}, nil
	}}
	ctrl := newController(t, gen, &fakePublisher{}, conversation.WithCallTimeout(5*time.Millisecond))

	_, err := ctrl.CreatePrompt(context.Background(), "Slow", "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if snap := ctrl.Snapshot(); snap.State != conversation.StateEmpty || snap.Draft.ID != "" {
		t.Fatalf("timed out create should roll back, got %+v", snap)
	}
}

func TestController_AgentReplyAndDecorators(t *testing.T) {
	gen := &fakeGenerator{create: func(string, string) (conversation.Generation, error) {
		return conversation.Generation{
			FormID: "f9",
			Fields: model.Schema{{Label: "<b>Name</b>", Type: model.FieldTypeText}},
			Reply:  "Here is your form.",
		}, nil
	}}
	ctrl := newController(t, gen, &fakePublisher{}, conversation.WithDecorators(schema.NewSanitizer()))

	snap, err := ctrl.CreatePrompt(context.Background(), "Form", "make it")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Draft.Fields[0].Label != "Name" {
		t.Fatalf("expected sanitized label, got %q", snap.Draft.Fields[0].Label)
	}
	if snap.Draft.Name != "Form" {
		t.Fatalf("expected requested name as fallback, got %q", snap.Draft.Name)
	}
	want := []model.ChatMessage{
		{ID: "m1", Role: model.RoleUser, Text: "make it", Status: model.MessageConfirmed, Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "m2", Role: model.RoleAgent, Text: "Here is your form.", Status: model.MessageConfirmed, Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	if diff := cmp.Diff(want, snap.Draft.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SubscribeReceivesTransitions(t *testing.T) {
	gen := &fakeGenerator{create: func(string, string) (conversation.Generation, error) {
		return conversation.Generation{FormID: "f1", Fields: contactFields()}, nil
	}}
	ctrl := newController(t, gen, &fakePublisher{})
	updates, cancel := ctrl.Subscribe()
	defer cancel()

	if _, err := ctrl.CreatePrompt(context.Background(), "Contact", "make it"); err != nil {
		t.Fatalf("create: %v", err)
	}

	var states []conversation.State
	for len(updates) > 0 {
		states = append(states, (<-updates).State)
	}
	want := []conversation.State{conversation.StateAwaitingGeneration, conversation.StateDrafted}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Fatalf("subscriber states mismatch (-want +got):\n%s", diff)
	}

	cancel()
	if _, ok := <-updates; ok {
		t.Fatalf("expected channel to be closed after cancel")
	}
}

func TestSuggestions(t *testing.T) {
	if len(conversation.Suggestions()) == 0 {
		t.Fatalf("expected starter prompts")
	}
}
