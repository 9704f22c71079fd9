package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formchat/internal/config"
	"github.com/goliatone/go-formchat/internal/logger"
	"github.com/goliatone/go-formchat/pkg/client"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *environment, args []string) error
}

var commands = []command{
	{name: "chat", summary: "design a form in conversation and publish it", run: runChat},
	{name: "fill", summary: "fill in and submit a published form", run: runFill},
	{name: "forms", summary: "list the forms you own", run: runForms},
	{name: "submissions", summary: "list the submissions of a form", run: runSubmissions},
	{name: "render", summary: "render a schema file as HTML or in the terminal", run: runRender},
	{name: "login", summary: "log in or register and save the session", run: runLogin},
	{name: "serve", summary: "serve the web front end", run: runServe},
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	if name == "-h" || name == "--help" || name == "help" {
		usage()
		return
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &environment{cfg: cfg}
	if err := cmd.run(ctx, env, os.Args[2:]); err != nil {
		stop()
		log.Fatalf("%s: %v", cmd.name, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: formchat <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", cmd.name, cmd.summary)
	}
}

// environment carries configuration shared by every command. Flags bound
// through bind override the loaded configuration.
type environment struct {
	cfg    config.Config
	logger zerolog.Logger
}

func (e *environment) bind(fs *flag.FlagSet) {
	fs.StringVar(&e.cfg.APIURL, "api-url", e.cfg.APIURL, "collaborator base URL")
	fs.StringVar(&e.cfg.LogLevel, "log-level", e.cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&e.cfg.LogPretty, "log-pretty", e.cfg.LogPretty, "human readable logs")
	fs.StringVar(&e.cfg.SessionFile, "session", e.cfg.SessionFile, "session file written by login")
	fs.DurationVar(&e.cfg.CallTimeout, "timeout", e.cfg.CallTimeout, "collaborator call timeout")
}

// parse parses args, validates the result and builds the logger.
func (e *environment) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	e.logger = logger.InitGlobal(logger.Config{
		Level:   e.cfg.LogLevel,
		Pretty:  e.cfg.LogPretty,
		Output:  os.Stderr,
		Service: "formchat",
	})
	return nil
}

func (e *environment) context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, e.logger)
}

// session prefers an explicit token from configuration over the saved file.
func (e *environment) session() (*client.Session, error) {
	if e.cfg.Token != "" {
		return client.NewSession(e.cfg.Token, ""), nil
	}
	return client.LoadSession(e.cfg.SessionFile)
}

func (e *environment) client(session *client.Session) (*client.Client, error) {
	return client.New(e.cfg.APIURL,
		client.WithSession(session),
		client.WithTimeout(e.cfg.CallTimeout),
		client.WithLogger(logger.Component(e.logger, "client")),
	)
}

// ownerClient requires a logged-in session.
func (e *environment) ownerClient() (*client.Client, error) {
	session, err := e.session()
	if err != nil {
		return nil, err
	}
	if !session.Authenticated() {
		return nil, fmt.Errorf("not logged in; run \"formchat login\" or set %s", config.EnvToken)
	}
	return e.client(session)
}
