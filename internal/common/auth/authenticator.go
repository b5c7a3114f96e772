// Package auth is the operator sign-in used by the CLI. It checks a single
// configured credential pair and keeps a flag in a SessionStore.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"professionals-admin/internal/common/config"
	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/logger"
)

const signedIn = "1"

type Credentials struct {
	Email    string
	Username string
	Password string
}

// login returns the email if set, else the username, trimmed.
func (c Credentials) login() string {
	if c.Email != "" {
		return strings.TrimSpace(c.Email)
	}
	return strings.TrimSpace(c.Username)
}

type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Authenticator struct {
	username string
	password string
	key      string
	ttl      time.Duration
	store    SessionStore
	logger   logger.Logger
}

func NewAuthenticator(cfg config.AuthConfig, store SessionStore, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	key := cfg.SessionKey
	if key == "" {
		key = config.DefaultSessionKey
	}
	return &Authenticator{
		username: cfg.Username,
		password: cfg.Password,
		key:      key,
		ttl:      time.Duration(cfg.SessionTTL) * time.Millisecond,
		store:    store,
		logger:   log.WithFields(map[string]interface{}{"component": "auth"}),
	}
}

// Hint is the message shown on a failed login.
func (a *Authenticator) Hint() string {
	return fmt.Sprintf("Use email: %s and password: %s", a.username, a.password)
}

func (a *Authenticator) Login(ctx context.Context, creds Credentials) error {
	if creds.login() != a.username || creds.Password != a.password {
		a.logger.Warn("login rejected", map[string]interface{}{"login": creds.login()})
		return errors.NewInvalidCredentialsError(a.Hint())
	}
	if err := a.store.Set(ctx, a.key, signedIn, a.ttl); err != nil {
		return errors.NewSessionStoreError("set", err)
	}
	a.logger.Info("logged in", map[string]interface{}{"login": a.username})
	return nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.store.Delete(ctx, a.key); err != nil {
		return errors.NewSessionStoreError("delete", err)
	}
	return nil
}

// Check reports whether a session is present. A store failure is returned as
// an error, not as signed out.
func (a *Authenticator) Check(ctx context.Context) (bool, error) {
	val, err := a.store.Get(ctx, a.key)
	if stderrors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewSessionStoreError("get", err)
	}
	return val == signedIn, nil
}

// Require fails with NOT_AUTHENTICATED when nobody is signed in.
func (a *Authenticator) Require(ctx context.Context) error {
	ok, err := a.Check(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotAuthenticatedError()
	}
	return nil
}

// Identity returns the signed-in operator, or nil when signed out.
func (a *Authenticator) Identity(ctx context.Context) (*Identity, error) {
	ok, err := a.Check(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return &Identity{ID: 1, Name: "Test User", Email: a.username}, nil
}
