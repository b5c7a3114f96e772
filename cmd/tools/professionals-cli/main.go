// cmd/tools/professionals-cli/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"professionals-admin/internal/common/auth"
	"professionals-admin/internal/common/config"
	"professionals-admin/internal/common/database"
	"professionals-admin/internal/common/errors"
	apihttp "professionals-admin/internal/common/http"
	"professionals-admin/internal/common/logger"
	"professionals-admin/internal/dataprovider"
	"professionals-admin/internal/professionals"
)

// app is everything a command needs. Tests build one directly.
type app struct {
	auth   *auth.Authenticator
	client *professionals.Client
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewStructured(cfg.Logging.Level, "console")

	var store auth.SessionStore
	if cfg.Auth.SessionStore == auth.StoreRedis {
		rdb := database.NewRedis(cfg.Redis)
		defer rdb.Close()
		store, err = auth.NewSessionStore(auth.StoreRedis, rdb.Client)
	} else {
		store, err = auth.NewSessionStore(cfg.Auth.SessionStore, nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session store: %v\n", err)
		os.Exit(1)
	}

	api := apihttp.NewClient(apihttp.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: config.GetDuration(cfg.API.Timeout),
		Logger:  log,
	})
	a := &app{
		auth: auth.NewAuthenticator(cfg.Auth, store, log),
		client: professionals.NewClient(
			dataprovider.New(api),
			professionals.WithResource(cfg.API.Resource),
			professionals.WithLogger(log),
		),
		out: os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "list":
		return a.list(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "bulk":
		return a.bulk(ctx, args)
	case "upload-resume":
		return a.uploadResume(ctx, args)
	case "help":
		printUsage(a.out)
		return nil
	default:
		printUsage(a.out)
		return fmt.Errorf("unknown command %q", command)
	}
}

// describe renders known error codes the way the admin screens show them.
func describe(err error) string {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return fmt.Sprintf("Error [%s]: %s", stdErr.Code, stdErr.Message)
	}
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		stdErr = apiErr.ToStandardError()
		return fmt.Sprintf("Error [%s]: %s", stdErr.Code, stdErr.Details)
	}
	return fmt.Sprintf("Error: %v", err)
}

const usage = `Usage: professionals-cli <command> [flags]

Commands:
  login          Sign in with -email and -password
  logout         Sign out
  whoami         Show the signed-in operator
  list           List professionals, optionally filtered by -source
  create         Create one professional
  bulk           Upsert the drafts in a JSON file
  upload-resume  Upload a PDF resume for a professional
  help           Show this help message

Every command except login, logout and help needs a session. Pass -login-email
and -login-password to sign in for that run.

Examples:
  professionals-cli login -email test@test.com -password test
  professionals-cli list -source partner
  ` + createExample + `
  professionals-cli bulk -file drafts.json
  professionals-cli upload-resume -id 42 -file ada.pdf

Use 'professionals-cli <command> -h' for more information about a command.
`

const createExample = `professionals-cli create -name "Ada Lovelace" -source direct -contact-email ada@example.com`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}
