// Package services contains application services for the fraudwatch client.
// This file defines the authentication service: login, register, logout,
// session restore and the service liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/client/session"
)

var ErrNoToken = errors.New("service did not issue a token")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the service and persist identity+token.
//   - Register: create an account; log in only if the service issued a token.
//   - Logout: forget the session locally (idempotent).
//   - Restore: reload a persisted session at start-up.
//   - Me: fetch the service's view of the current user.
//   - Ping: check service liveness.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte, role models.Role) (*models.Identity, error)
	Register(ctx context.Context, reg client.Registration) (*models.Identity, bool, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) bool
	Me(ctx context.Context) (*models.Identity, error)
	Ping(ctx context.Context) (*client.Health, error)
}

type authService struct {
	client  client.Client
	session *session.Store
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(c client.Client, s *session.Store) AuthService {
	return &authService{client: c, session: s}
}

func (a *authService) Login(ctx context.Context, email string, password []byte, role models.Role) (*models.Identity, error) {
	res, err := a.client.Login(ctx, email, string(password), role)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login error: %w", ErrNoToken)
	}
	if err := a.session.Login(ctx, res.Identity, res.Token); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return a.session.CurrentIdentity(), nil
}

// Register creates the account. The bool reports whether the caller is now
// logged in, which only happens when the response carried a token.
func (a *authService) Register(ctx context.Context, reg client.Registration) (*models.Identity, bool, error) {
	res, err := a.client.Register(ctx, reg)
	if err != nil {
		return nil, false, fmt.Errorf("register error: %w", err)
	}
	if res.Token == "" {
		identity := res.Identity
		return &identity, false, nil
	}
	if err := a.session.Login(ctx, res.Identity, res.Token); err != nil {
		return nil, false, fmt.Errorf("session saving error: %w", err)
	}
	return a.session.CurrentIdentity(), true, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

func (a *authService) Restore(ctx context.Context) bool {
	return a.session.Restore(ctx)
}

func (a *authService) Me(ctx context.Context) (*models.Identity, error) {
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a.client.CurrentUser(ctx)
}

func (a *authService) Ping(ctx context.Context) (*client.Health, error) {
	return a.client.Health(ctx)
}
