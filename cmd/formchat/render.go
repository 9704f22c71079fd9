package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formchat/internal/config"
	"github.com/goliatone/go-formchat/pkg/render"
	"github.com/goliatone/go-formchat/pkg/renderers/tui"
	"github.com/goliatone/go-formchat/pkg/renderers/vanilla"
	"github.com/goliatone/go-formchat/pkg/schema"
)

func runRender(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	env.bind(fs)
	source := fs.String("schema", "", "schema file, JSON or YAML (required)")
	rendererName := fs.String("renderer", "vanilla", "renderer to use (vanilla, tui)")
	output := fs.String("output", "", "output file (stdout if empty)")
	action := fs.String("action", "", "form action; empty renders a preview without a submit button")
	fs.StringVar(&env.cfg.ThemeFile, "theme", env.cfg.ThemeFile, "theme manifest for the vanilla renderer")
	fs.StringVar(&env.cfg.ThemeVariant, "variant", env.cfg.ThemeVariant, "theme variant")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if *source == "" {
		return errors.New("-schema is required")
	}
	ctx = env.context(ctx)

	fields, err := schema.LoadFile(*source)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(*source), filepath.Ext(*source))
	form := render.Form{ID: name, Name: name, Fields: fields}

	html, err := vanilla.New(vanilla.WithDefaultStyles())
	if err != nil {
		return err
	}
	terminal, err := tui.New(tui.WithPromptDriver(tui.NewSurveyDriver(os.Stderr)), tui.WithOutputFormat(tui.OutputFormatPrettyText))
	if err != nil {
		return err
	}
	registry, err := render.NewRegistry(html, terminal)
	if err != nil {
		return err
	}

	opts := renderOptions()
	opts.Action = *action
	if env.cfg.ThemeFile != "" {
		cfg, err := config.LoadTheme(env.cfg.ThemeFile, env.cfg.ThemeVariant)
		if err != nil {
			return err
		}
		opts.Theme = cfg
	}

	out, contentType, err := registry.Render(ctx, *rendererName, form, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", *source, err)
	}
	env.logger.Debug().Str("renderer", *rendererName).Str("content_type", contentType).Int("bytes", len(out)).Msg("schema rendered")
	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Form written to %s\n", *output)
		return nil
	}
	fmt.Println(string(out))
	return nil
}
