package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/renderers/tui"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/validation"
)

const (
	actionRefine  = "Refine the form"
	actionPreview = "Preview in the terminal"
	actionPublish = "Publish"
	actionQuit    = "Quit without publishing"
)

func runChat(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	env.bind(fs)
	fs.StringVar(&env.cfg.FrontendURL, "frontend-url", env.cfg.FrontendURL, "base URL used for share links")
	name := fs.String("name", "", "form name (prompted when empty)")
	message := fs.String("message", "", "first prompt (prompted when empty)")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	ctx = env.context(ctx)

	c, err := env.ownerClient()
	if err != nil {
		return err
	}
	ctrl, err := conversation.NewController(
		client.NewGenerator(c),
		client.NewPublisher(c),
		conversation.WithLogger(logger.Component(env.logger, "conversation")),
		conversation.WithCallTimeout(env.cfg.CallTimeout),
		conversation.WithDecorators(schema.NewSanitizer()),
	)
	if err != nil {
		return err
	}

	driver := tui.NewSurveyDriver(os.Stdout)
	s := &chatSession{driver: driver, ctrl: ctrl, frontendURL: env.cfg.FrontendURL}
	if err := s.create(ctx, *name, *message); err != nil {
		return err
	}
	return s.loop(ctx)
}

type chatSession struct {
	driver      tui.PromptDriver
	ctrl        *conversation.Controller
	frontendURL string
}

// create asks for the first prompt until a draft exists.
func (s *chatSession) create(ctx context.Context, name, message string) error {
	if message == "" {
		hints := conversation.Suggestions()
		if err := s.driver.Info(ctx, "Describe the form you need, for example:\n  - "+strings.Join(hints, "\n  - ")); err != nil {
			return err
		}
	}
	for {
		var err error
		if strings.TrimSpace(name) == "" {
			if name, err = s.driver.Input(ctx, tui.InputConfig{Message: "Form name", Validator: required("form name")}); err != nil {
				return err
			}
		}
		if strings.TrimSpace(message) == "" {
			if message, err = s.driver.TextArea(ctx, tui.TextAreaConfig{Message: "What should the form collect?"}); err != nil {
				return err
			}
		}

		snap, err := s.ctrl.CreatePrompt(ctx, name, message)
		if err == nil {
			return s.show(ctx, snap)
		}
		if err := s.report(ctx, err); err != nil {
			return err
		}
		message = ""
	}
}

func (s *chatSession) loop(ctx context.Context) error {
	actions := []string{actionRefine, actionPreview, actionPublish, actionQuit}
	for {
		idx, err := s.driver.Select(ctx, tui.SelectConfig{Message: "Next step", Options: actions})
		if err != nil {
			return err
		}
		switch actions[idx] {
		case actionRefine:
			text, err := s.driver.Input(ctx, tui.InputConfig{Message: "Your change", Validator: validation.ValidateMessage})
			if err != nil {
				return err
			}
			snap, err := s.ctrl.SendMessage(ctx, text)
			if err != nil {
				if err := s.report(ctx, err); err != nil {
					return err
				}
				continue
			}
			if err := s.show(ctx, snap); err != nil {
				return err
			}
		case actionPreview:
			if err := s.preview(ctx); err != nil {
				return err
			}
		case actionPublish:
			ok, err := s.driver.Confirm(ctx, tui.ConfirmConfig{Message: "Publish this form? It can no longer be changed."})
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if _, err := s.ctrl.Publish(ctx); err != nil {
				if err := s.report(ctx, err); err != nil {
					return err
				}
				continue
			}
			draft := s.ctrl.Snapshot().Draft
			return s.driver.Info(ctx, "Published. Share this link:\n  "+client.ShareLink(s.frontendURL, draft.ID))
		case actionQuit:
			return nil
		}
	}
}

// preview walks through the draft with the terminal renderer. Answers are
// discarded.
func (s *chatSession) preview(ctx context.Context) error {
	r, err := tui.New(tui.WithPromptDriver(s.driver))
	if err != nil {
		return err
	}
	draft := s.ctrl.Snapshot().Draft
	_, err = r.Collect(ctx, formOf(draft.ID, draft.Name, draft.Fields), renderOptions())
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return s.driver.Info(ctx, vErr.Error())
	}
	return err
}

func (s *chatSession) show(ctx context.Context, snap conversation.Snapshot) error {
	return s.driver.Info(ctx, describeDraft(snap.Draft))
}

// report prints a failed transition so the user can retry. Cancellation is
// returned to stop the session.
func (s *chatSession) report(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return s.driver.Info(ctx, "! the form service did not answer in time, try again")
	case errors.Is(err, client.ErrUnauthorized):
		return err
	}
	return s.driver.Info(ctx, "! "+err.Error())
}

func required(label string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func describeDraft(draft model.FormDraft) string {
	var b strings.Builder
	title := draft.Name
	if title == "" {
		title = "Untitled form"
	}
	fmt.Fprintf(&b, "%s (%d fields)\n", title, len(draft.Fields))
	if len(draft.Fields) == 0 {
		b.WriteString("  the service returned no usable fields; describe the form again\n")
	}
	for _, field := range draft.Fields {
		marker := " "
		if field.Required {
			marker = "*"
		}
		fmt.Fprintf(&b, "  %s %-24s %s", marker, field.Label, field.Type)
		if len(field.Options) > 0 {
			labels := make([]string, 0, len(field.Options))
			for _, opt := range field.Options {
				labels = append(labels, opt.Label)
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(labels, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
