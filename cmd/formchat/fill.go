package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/renderers/tui"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/submission"
	"github.com/goliatone/go-formchat/pkg/validation"
)

func runFill(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	env.bind(fs)
	formID := fs.String("form", "", "public id of the form to fill (required)")
	email := fs.String("email", "", "submitter email (defaults to the form's email field)")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if *formID == "" {
		return errors.New("-form is required")
	}
	ctx = env.context(ctx)

	// Respondents need no account; an anonymous session is enough.
	c, err := env.client(client.NewSession("", ""))
	if err != nil {
		return err
	}
	svc, err := submission.NewService(client.NewStore(c), submission.WithDecorators(schema.NewSanitizer()))
	if err != nil {
		return err
	}

	fields, err := svc.Load(ctx, *formID)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("form %s has no fields to fill", *formID)
	}

	driver := tui.NewSurveyDriver(os.Stdout)
	r, err := tui.New(tui.WithPromptDriver(driver))
	if err != nil {
		return err
	}

	opts := renderOptions()
	for {
		values, err := r.Collect(ctx, formOf(*formID, "", fields), opts)
		var vErr *validation.Error
		switch {
		case errors.As(err, &vErr):
			opts = retryOptions(fields, values, vErr)
			continue
		case err != nil:
			return err
		}

		err = svc.Submit(ctx, *formID, *email, fields, values)
		if errors.As(err, &vErr) {
			opts = retryOptions(fields, values, vErr)
			continue
		}
		if err != nil {
			return err
		}
		logger.From(ctx).Debug().Str("form_id", *formID).Msg("form submitted from terminal")
		return driver.Info(ctx, "Thanks, your answers were submitted.")
	}
}

// retryOptions keeps the answers already given and flags the missing fields.
func retryOptions(fields model.Schema, values map[string]any, vErr *validation.Error) render.RenderOptions {
	opts := renderOptions()
	opts.Values = values
	mapping := render.MapError(fields, vErr)
	mapping.Apply(&opts)
	return opts
}

func formOf(id, name string, fields model.Schema) render.Form {
	return render.Form{ID: id, Name: name, Fields: fields}
}

func renderOptions() render.RenderOptions {
	return render.RenderOptions{
		Values: map[string]any{},
		Errors: map[string][]string{},
	}
}
