package mockapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/internal/mockapi"
	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/submission"
)

func newMock(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := mockapi.OpenStore(filepath.Join(t.TempDir(), "mock.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ids := []string{"pub-1", "pub-2", "pub-3"}
	srv, err := mockapi.New(context.Background(), store, mockapi.WithPublicIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server, session *client.Session) *client.Client {
	t.Helper()
	c, err := client.New(ts.URL+mockapi.DefaultBasePath, client.WithSession(session))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestMockAPI_EndToEndConversationAndSubmission(t *testing.T) {
	ctx := context.Background()
	ts := newMock(t)
	owner := newClient(t, ts, client.NewSession("", ""))

	if _, err := owner.Register(ctx, client.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !owner.Session().Authenticated() {
		t.Fatalf("register should authenticate the session")
	}

	ctrl, err := conversation.NewController(client.NewGenerator(owner), client.NewPublisher(owner))
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	snap, err := ctrl.CreatePrompt(ctx, "Contact", "a contact form")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Draft.ID != "pub-1" {
		t.Fatalf("expected mock public id, got %q", snap.Draft.ID)
	}
	if diff := cmp.Diff([]string{"full_name", "email", "message"}, snap.Draft.Fields.IDs()); diff != "" {
		t.Fatalf("generated ids mismatch (-want +got):\n%s", diff)
	}

	snap, err = ctrl.SendMessage(ctx, "remove message. add a phone number field")
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if diff := cmp.Diff([]string{"full_name", "email", "phone_number"}, snap.Draft.Fields.IDs()); diff != "" {
		t.Fatalf("refined ids mismatch (-want +got):\n%s", diff)
	}

	published, err := ctrl.Publish(ctx)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	respondent := newClient(t, ts, client.NewSession("", ""))
	svc, err := submission.NewService(client.NewStore(respondent))
	if err != nil {
		t.Fatalf("submission service: %v", err)
	}
	fields, err := svc.Load(ctx, "pub-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(published, fields); diff != "" {
		t.Fatalf("loaded schema mismatch (-want +got):\n%s", diff)
	}

	if err := svc.Submit(ctx, "pub-1", "", fields, map[string]any{"full_name": "Grace"}); err == nil {
		t.Fatalf("expected validation error for missing email")
	}
	values := map[string]any{"full_name": "Grace", "email": "grace@example.com"}
	if err := svc.Submit(ctx, "pub-1", "", fields, values); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ownerStore, err := submission.NewService(client.NewStore(owner))
	if err != nil {
		t.Fatalf("owner service: %v", err)
	}
	list, err := ownerStore.List(ctx, "pub-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].SubmitterEmail != "grace@example.com" {
		t.Fatalf("unexpected submissions: %+v", list)
	}
	if diff := cmp.Diff(map[string]any{"full_name": "Grace", "email": "grace@example.com", "phone_number": ""}, list[0].Values); diff != "" {
		t.Fatalf("stored values mismatch (-want +got):\n%s", diff)
	}

	forms, err := owner.Forms(ctx)
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if len(forms) != 1 || forms[0].PublicID != "pub-1" || forms[0].Title != "Contact" {
		t.Fatalf("unexpected forms: %+v", forms)
	}
}

func TestMockAPI_RequiresBearerForOwnerEndpoints(t *testing.T) {
	ts := newMock(t)
	anon := newClient(t, ts, client.NewSession("", ""))

	_, err := anon.CreateForm(context.Background(), client.CreateFormRequest{FormName: "x", Message: "y"})
	if !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	forged := newClient(t, ts, client.NewSession("forged", "Eve"))
	if _, err := forged.Forms(context.Background()); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown token, got %v", err)
	}
}

func TestMockAPI_RejectsRequestsOutsideContract(t *testing.T) {
	ts := newMock(t)
	ctx := context.Background()
	c := newClient(t, ts, client.NewSession("", ""))
	if _, err := c.Register(ctx, client.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := c.CreateForm(ctx, client.CreateFormRequest{FormName: "", Message: "hello"})
	var tErr *client.TransportError
	if !errors.As(err, &tErr) || tErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 from contract validation, got %v", err)
	}

	resp, err := http.Post(ts.URL+"/api/Chat", "application/json", strings.NewReader(`{"formName":"x"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing required property, got %d", resp.StatusCode)
	}
}

func TestMockAPI_LoginAndUnpublishedForms(t *testing.T) {
	ts := newMock(t)
	ctx := context.Background()
	c := newClient(t, ts, client.NewSession("", ""))
	if _, err := c.Register(ctx, client.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := c.Register(ctx, client.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	fresh := newClient(t, ts, client.NewSession("", ""))
	if _, err := fresh.Login(ctx, client.LoginRequest{Email: "ada@example.com", Password: "nope"}); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a bad password, got %v", err)
	}
	auth, err := fresh.Login(ctx, client.LoginRequest{Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if auth.User.Name != "Ada" || fresh.Session().UserName() != "Ada" {
		t.Fatalf("unexpected auth response: %+v", auth)
	}

	created, err := fresh.CreateForm(ctx, client.CreateFormRequest{FormName: "Survey", Message: "feedback survey"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fresh.LoadFinal(ctx, created.FormPublicID.String()); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before publish, got %v", err)
	}

	refined, err := fresh.Refine(ctx, created.FormPublicID.String(), client.RefineRequest{Message: "make rating optional"})
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if !strings.HasPrefix(refined.FormJSON, `{"response":"`) {
		t.Fatalf("expected doubly encoded formJson, got %s", refined.FormJSON)
	}
}

func TestMockAPI_OwnershipIsEnforced(t *testing.T) {
	ts := newMock(t)
	ctx := context.Background()
	ada := newClient(t, ts, client.NewSession("", ""))
	eve := newClient(t, ts, client.NewSession("", ""))
	if _, err := ada.Register(ctx, client.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register ada: %v", err)
	}
	if _, err := eve.Register(ctx, client.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register eve: %v", err)
	}
	created, err := ada.CreateForm(ctx, client.CreateFormRequest{FormName: "Contact", Message: "contact"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = eve.PublishFinal(ctx, created.FormPublicID.String(), client.FinalJSON{FinalJSON: "[]"})
	var tErr *client.TransportError
	if !errors.As(err, &tErr) || tErr.Status != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	forms, err := eve.Forms(ctx)
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if len(forms) != 0 {
		t.Fatalf("eve should see no forms, got %+v", forms)
	}
}
