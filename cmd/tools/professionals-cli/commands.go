package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"professionals-admin/internal/common/auth"
	"professionals-admin/internal/professionals"

	"github.com/gabriel-vasile/mimetype"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// loginFlags adds -login-email and -login-password so a command can sign in
// for the run without clashing with the record's own fields.
func loginFlags(fs *flag.FlagSet) *auth.Credentials {
	creds := &auth.Credentials{}
	fs.StringVar(&creds.Email, "login-email", "", "Operator email")
	fs.StringVar(&creds.Password, "login-password", "", "Operator password")
	return creds
}

func (a *app) requireSession(ctx context.Context, creds *auth.Credentials) error {
	if creds != nil && (creds.Email != "" || creds.Password != "") {
		if err := a.auth.Login(ctx, *creds); err != nil {
			return err
		}
	}
	return a.auth.Require(ctx)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	creds := &auth.Credentials{}
	fs.StringVar(&creds.Email, "email", "", "Operator email")
	fs.StringVar(&creds.Password, "password", "", "Operator password")
	fs.StringVar(&creds.Username, "username", "", "Operator username, used when -email is empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.Login(ctx, *creds); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed in.")
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	identity, err := a.auth.Identity(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	return printJSON(a.out, identity)
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	creds := loginFlags(fs)
	source := fs.String("source", "all", "Source filter: all or one of "+sourceNames())
	includeResume := fs.Bool("resume", true, "Ask for the resume fields")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx, creds); err != nil {
		return err
	}

	src, ok := professionals.ParseSource(*source)
	if !ok {
		src = professionals.Source(*source)
	}
	items, err := a.client.List(ctx, professionals.ListOptions{Source: src, IncludeResume: *includeResume})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No professionals found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tEMAIL\tRESUME")
	for _, p := range items {
		resume := "-"
		if p.HasResume() {
			resume = *p.ResumeURL
			if p.ResumeSummary != nil {
				resume += " " + professionals.SummaryPreview(*p.ResumeSummary, professionals.SummaryPreviewLength)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.FullName, p.Source, deref(p.Email), resume)
	}
	return tw.Flush()
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := a.flagSet("create")
	creds := loginFlags(fs)
	var in professionals.CreateInput
	fs.StringVar(&in.FullName, "name", "", "Full name (required)")
	fs.StringVar(&in.Email, "contact-email", "", "Contact email of the professional")
	fs.StringVar(&in.Phone, "phone", "", "Phone")
	fs.StringVar(&in.CompanyName, "company", "", "Company name")
	fs.StringVar(&in.JobTitle, "title", "", "Job title")
	source := fs.String("source", "", "Source, one of "+sourceNames()+" (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx, creds); err != nil {
		return err
	}
	in.Source = professionals.Source(*source)

	var created *professionals.Professional
	submission := professionals.NewSubmission(professionals.KindCreate, nil)
	err := submission.Run(ctx, func(ctx context.Context) error {
		var err error
		created, err = a.client.Create(ctx, in)
		return err
	})
	if err != nil {
		return err
	}
	return printJSON(a.out, created)
}

func (a *app) bulk(ctx context.Context, args []string) error {
	fs := a.flagSet("bulk")
	creds := loginFlags(fs)
	file := fs.String("file", "", "JSON file holding an array of drafts (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}
	if err := a.requireSession(ctx, creds); err != nil {
		return err
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read drafts: %w", err)
	}
	var drafts []professionals.Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return fmt.Errorf("failed to parse drafts: %w", err)
	}
	eligible := a.client.EligibleDrafts(professionals.NormalizeDrafts(drafts))

	var result *professionals.BulkResult
	submission := professionals.NewSubmission(professionals.KindBulk, nil)
	err = submission.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = a.client.SubmitBulk(ctx, drafts)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Submitted %d of %d rows: %d created, %d updated, %d failed\n",
		len(eligible), len(drafts), result.Created, result.Updated, result.Failed)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNAME\tSTATUS\tERROR")
	for i, d := range eligible {
		item, ok := result.ItemFor(i)
		if !ok {
			fmt.Fprintf(tw, "%d\t%s\t-\t\n", i, d.FullName)
			continue
		}
		p := professionals.PresentStatus(item.Status)
		fmt.Fprintf(tw, "%d\t%s\t%s (%s)\t%s\n", i, d.FullName, p.Label, p.Indicator, item.Error)
	}
	return tw.Flush()
}

func (a *app) uploadResume(ctx context.Context, args []string) error {
	fs := a.flagSet("upload-resume")
	creds := loginFlags(fs)
	id := fs.Int64("id", 0, "Professional ID (required)")
	path := fs.String("file", "", "Resume file (required)")
	contentType := fs.String("type", "", "Declared media type, detected from the file when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		fs.Usage()
		return fmt.Errorf("-id must be a positive integer")
	}
	if err := a.requireSession(ctx, creds); err != nil {
		return err
	}

	file := professionals.ResumeFile{Name: filepath.Base(*path), ContentType: *contentType}
	if *path != "" {
		f, err := os.Open(*path)
		if err != nil {
			return fmt.Errorf("failed to open resume: %w", err)
		}
		defer f.Close()
		if file.ContentType == "" {
			mtype, err := mimetype.DetectReader(f)
			if err != nil {
				return fmt.Errorf("failed to detect file type: %w", err)
			}
			file.ContentType = mtype.String()
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}
		file.Content = f
	}

	submission := professionals.NewSubmission(professionals.KindUpload, nil)
	err := submission.Run(ctx, func(ctx context.Context) error {
		_, err := a.client.UploadResume(ctx, *id, file)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s for professional %d.\n", file.Name, *id)
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sourceNames() string {
	names := make([]string, len(professionals.Sources))
	for i, s := range professionals.Sources {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
