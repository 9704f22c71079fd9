package main

import (
	"context"
	"flag"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formchat/internal/config"
	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/internal/metrics"
	"github.com/goliatone/go-formchat/internal/server"
	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/conversation"
	"github.com/goliatone/go-formchat/pkg/schema"
	"github.com/goliatone/go-formchat/pkg/submission"
	"github.com/goliatone/go-formchat/pkg/validation"
)

func runServe(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	env.bind(fs)
	fs.StringVar(&env.cfg.Addr, "addr", env.cfg.Addr, "listen address")
	fs.StringVar(&env.cfg.ThemeFile, "theme", env.cfg.ThemeFile, "theme manifest for rendered pages")
	fs.StringVar(&env.cfg.ThemeVariant, "variant", env.cfg.ThemeVariant, "theme variant")
	fs.DurationVar(&env.cfg.QuietPeriod, "quiet-period", env.cfg.QuietPeriod, "dictation quiet period before a transcript is sent")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	ctx = env.context(ctx)

	owner, err := env.ownerClient()
	if err != nil {
		return err
	}

	m := metrics.New()
	sanitizer := schema.NewSanitizer()
	schemaCheck := validation.Decorator(func(result validation.SchemaValidationResult) {
		for _, issue := range result.Issues {
			env.logger.Warn().Int("index", issue.Index).Str("field", issue.Field).Msg(issue.Message)
		}
	})

	convLog := logger.Component(env.logger, "conversation")
	factory := func() (*conversation.Controller, error) {
		return conversation.NewController(
			client.NewGenerator(owner),
			client.NewPublisher(owner),
			conversation.WithLogger(convLog),
			conversation.WithMetrics(m),
			conversation.WithCallTimeout(env.cfg.CallTimeout),
			conversation.WithDecorators(sanitizer, schemaCheck),
		)
	}

	// The owner session also lists submissions; the public endpoints ignore it.
	submissions, err := submission.NewService(client.NewStore(owner),
		submission.WithMetrics(m),
		submission.WithDecorators(sanitizer),
	)
	if err != nil {
		return err
	}

	var themeCfg *theme.RendererConfig
	if env.cfg.ThemeFile != "" {
		if themeCfg, err = config.LoadTheme(env.cfg.ThemeFile, env.cfg.ThemeVariant); err != nil {
			return err
		}
	}

	srv, err := server.New(factory,
		server.WithLogger(logger.Component(env.logger, "server")),
		server.WithMetrics(m),
		server.WithSubmissions(submissions),
		server.WithTheme(themeCfg),
		server.WithQuietPeriod(env.cfg.QuietPeriod),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx, env.cfg.Addr)
}
