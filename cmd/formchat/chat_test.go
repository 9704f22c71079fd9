package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/renderers/tui"
)

type scriptedDriver struct {
	inputs    []string
	textAreas []string
	selects   []int
	confirms  []bool
	infos     []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return nil, errors.New("no multiselect scripted")
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	if len(d.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	v := d.textAreas[0]
	d.textAreas = d.textAreas[1:]
	return v, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

var chatFields = model.Schema{
	{Label: "Name", Type: model.FieldTypeText, Required: true},
	{Label: "Email", Type: model.FieldTypeText, Required: true},
}

func TestChatSession_CreateRefinePublish(t *testing.T) {
	var published model.Schema
	gen := conversation.GeneratorFuncs{
		CreateFunc: func(context.Context, string, string) (conversation.Generation, error) {
			return conversation.Generation{FormID: "pub-1", Fields: chatFields.Clone()}, nil
		},
		RefineFunc: func(context.Context, string, string) (conversation.Generation, error) {
			return conversation.Generation{FormID: "pub-1", Fields: chatFields[:1].Clone()}, nil
		},
	}
	pub := conversation.PublisherFunc(func(_ context.Context, _ string, fields model.Schema) error {
		published = fields
		return nil
	})
	ctrl, err := conversation.NewController(gen, pub)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	driver := &scriptedDriver{
		inputs:    []string{"Contact", "drop the email"},
		textAreas: []string{"a contact form"},
		selects:   []int{0, 2},
		confirms:  []bool{true},
	}
	s := &chatSession{driver: driver, ctrl: ctrl, frontendURL: "https://forms.example.com/"}
	ctx := context.Background()
	if err := s.create(ctx, "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.loop(ctx); err != nil {
		t.Fatalf("loop: %v", err)
	}

	if diff := cmp.Diff(chatFields[:1], published); diff != "" {
		t.Fatalf("published schema mismatch (-want +got):\n%s", diff)
	}
	last := driver.infos[len(driver.infos)-1]
	if !strings.Contains(last, "https://forms.example.com/view/form/pub-1") {
		t.Fatalf("expected share link, got %q", last)
	}
	if !strings.Contains(driver.infos[0], conversation.Suggestions()[0]) {
		t.Fatalf("expected suggestions first, got %q", driver.infos[0])
	}
}

func TestChatSession_CreateFailureAsksAgain(t *testing.T) {
	calls := 0
	gen := conversation.GeneratorFuncs{
		CreateFunc: func(context.Context, string, string) (conversation.Generation, error) {
			calls++
			if calls == 1 {
				return conversation.Generation{}, errors.New("service unavailable")
			}
			return conversation.Generation{FormID: "pub-1", Fields: chatFields.Clone()}, nil
		},
	}
	ctrl, err := conversation.NewController(gen, conversation.PublisherFunc(func(context.Context, string, model.Schema) error { return nil }))
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	driver := &scriptedDriver{textAreas: []string{"second try"}}
	s := &chatSession{driver: driver, ctrl: ctrl}

	if err := s.create(context.Background(), "Contact", "first try"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two create calls, got %d", calls)
	}
	if ctrl.State() != conversation.StateDrafted {
		t.Fatalf("expected drafted, got %s", ctrl.State())
	}
	found := false
	for _, msg := range driver.infos {
		if strings.HasPrefix(msg, "! ") && strings.Contains(msg, "service unavailable") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the failure to be reported, got %q", driver.infos)
	}
}

func TestDescribeDraft(t *testing.T) {
	got := describeDraft(model.FormDraft{
		Name: "Feedback",
		Fields: model.Schema{
			{Label: "Name", Type: model.FieldTypeText, Required: true},
			{Label: "Size", Type: model.FieldTypeDropdown, Options: []model.Option{model.StringOption("S"), model.StringOption("M")}},
		},
	})
	want := "Feedback (2 fields)\n" +
		"  * Name                     text\n" +
		"    Size                     dropdown [S, M]"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("description mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSubmissions(t *testing.T) {
	var buf bytes.Buffer
	err := writeSubmissions(&buf, []model.Submission{{
		ID:             "7",
		SubmitterEmail: "ada@example.com",
		Fields: []model.SubmittedField{
			{Field: model.Field{Label: "Name", Type: model.FieldTypeText}, Value: "Ada"},
			{Field: model.Field{Label: "Topics", Type: model.FieldTypeCheckbox}, Value: []any{"a", "b"}},
		},
	}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"#7", "ada@example.com", "Ada", "a, b"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := writeSubmissions(&buf, nil); err != nil || !strings.Contains(buf.String(), "No submissions") {
		t.Fatalf("unexpected empty listing %q (%v)", buf.String(), err)
	}
}

func TestWriteForms(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := writeForms(&buf, "http://localhost:8080", []model.FormSummary{{ID: "1", Title: "Contact", PublicID: "pub-1", CreatedAt: created}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "http://localhost:8080/view/form/pub-1") {
		t.Fatalf("expected share link in listing:\n%s", buf.String())
	}
}
