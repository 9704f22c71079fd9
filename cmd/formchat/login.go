package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/renderers/tui"
)

func runLogin(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	env.bind(fs)
	email := fs.String("email", "", "account email (prompted when empty)")
	register := fs.Bool("register", false, "create the account first")
	name := fs.String("name", "", "display name when registering (prompted when empty)")
	logout := fs.Bool("logout", false, "forget the saved session")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	ctx = env.context(ctx)

	session := client.NewSession("", "")
	if *logout {
		if err := session.Save(env.cfg.SessionFile); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}

	driver := tui.NewSurveyDriver(os.Stdout)
	var err error
	if *email == "" {
		if *email, err = driver.Input(ctx, tui.InputConfig{Message: "Email", Validator: required("email")}); err != nil {
			return err
		}
	}
	if *register && *name == "" {
		if *name, err = driver.Input(ctx, tui.InputConfig{Message: "Name", Validator: required("name")}); err != nil {
			return err
		}
	}
	password, err := driver.Password(ctx, tui.InputConfig{Message: "Password", Validator: required("password")})
	if err != nil {
		return err
	}

	c, err := env.client(session)
	if err != nil {
		return err
	}
	var auth client.AuthResponse
	if *register {
		auth, err = c.Register(ctx, client.RegisterRequest{Name: *name, Email: *email, Password: password})
	} else {
		auth, err = c.Login(ctx, client.LoginRequest{Email: *email, Password: password})
	}
	if err != nil {
		return err
	}
	if err := c.Session().Save(env.cfg.SessionFile); err != nil {
		return err
	}
	env.logger.Debug().Str("session_file", env.cfg.SessionFile).Msg("session saved")
	fmt.Printf("Logged in as %s.\n", auth.User.Name)
	return nil
}
