package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-formchat/pkg/client"
	"github.com/goliatone/go-formchat/pkg/model"
	"github.com/goliatone/go-formchat/pkg/submission"
)

func runForms(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("forms", flag.ExitOnError)
	env.bind(fs)
	fs.StringVar(&env.cfg.FrontendURL, "frontend-url", env.cfg.FrontendURL, "base URL used for share links")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	ctx = env.context(ctx)

	c, err := env.ownerClient()
	if err != nil {
		return err
	}
	forms, err := c.Forms(ctx)
	if err != nil {
		return err
	}
	summaries := make([]model.FormSummary, 0, len(forms))
	for _, form := range forms {
		summaries = append(summaries, form.Model())
	}
	if *asJSON {
		return writeJSON(os.Stdout, summaries)
	}
	return writeForms(os.Stdout, env.cfg.FrontendURL, summaries)
}

func writeForms(w io.Writer, frontendURL string, forms []model.FormSummary) error {
	if len(forms) == 0 {
		_, err := fmt.Fprintln(w, "No forms yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tPUBLIC ID\tCREATED\tLINK")
	for _, form := range forms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			form.Title, form.PublicID, formatTime(form.CreatedAt), client.ShareLink(frontendURL, form.PublicID))
	}
	return tw.Flush()
}

func runSubmissions(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("submissions", flag.ExitOnError)
	env.bind(fs)
	formID := fs.String("form", "", "public id of the form (required)")
	asJSON := fs.Bool("json", false, "print JSON instead of a listing")
	if err := env.parse(fs, args); err != nil {
		return err
	}
	if *formID == "" {
		return errors.New("-form is required")
	}
	ctx = env.context(ctx)

	c, err := env.ownerClient()
	if err != nil {
		return err
	}
	svc, err := submission.NewService(client.NewStore(c))
	if err != nil {
		return err
	}
	list, err := svc.List(ctx, *formID)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(os.Stdout, list)
	}
	return writeSubmissions(os.Stdout, list)
}

func writeSubmissions(w io.Writer, list []model.Submission) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No submissions yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, sub := range list {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "#%s\t%s\t%s\n", sub.ID, sub.SubmitterEmail, formatTime(sub.SubmittedAt))
		for _, row := range sub.Fields {
			fmt.Fprintf(tw, "  %s\t%s\n", row.Label, row.DisplayValue())
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
