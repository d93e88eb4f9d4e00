// Package services contains application services for the JobCoach client.
// This file defines the authentication service: login, registration, logout
// and explicit role assignment, all keeping the session store and the
// credential vault in step.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jobcoach/internal/client/client"
	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

var (
	// ErrConsentRequired is returned by Login and Register when the account
	// has no consent on file. The session is signed in but must pass the
	// consent gate before it is used.
	ErrConsentRequired = errors.New("consent required")
	// ErrAuthRejected wraps a business-level rejection from the server.
	ErrAuthRejected = errors.New("authentication rejected")
)

// SessionStore is the subset of session.Store used by AuthService.
type SessionStore interface {
	Snapshot() models.Session
	SignIn(ctx context.Context, user models.User, tokens models.Tokens) error
	AssignRole(ctx context.Context, role models.Role) error
	Clear(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login/Register: authenticate against the server and sign the session in.
//     They return ErrConsentRequired when the consent gate must run next.
//   - Logout: invalidate the refresh token server-side (best effort), then
//     clear the local session and vault regardless of the server outcome.
//   - AssignRole: change the account role on the server and locally.
//   - NeedsConsent: query the server for a recorded consent.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) error
	Register(ctx context.Context, in client.RegisterInput) error
	Logout(ctx context.Context) error
	AssignRole(ctx context.Context, role models.Role) error
	NeedsConsent(ctx context.Context) (bool, error)
}

// authService is the concrete AuthService backed by a remote Client and the
// session store.
type authService struct {
	client client.Client
	store  SessionStore
	logger logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and store.
func NewAuthService(c client.Client, store SessionStore, logger logging.Logger) AuthService {
	return &authService{client: c, store: store, logger: logger.With("component", "auth")}
}

// Login authenticates with email and password. The password buffer is wiped
// once the request has been made.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	defer common.WipeByteArray(password)

	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return a.signIn(ctx, "login", email, res)
}

// Register creates an account and signs it in.
func (a *authService) Register(ctx context.Context, in client.RegisterInput) error {
	defer common.WipeByteArray(in.Password)

	if !in.Role.Valid() {
		return fmt.Errorf("register error: unknown role %q", in.Role)
	}

	res, err := a.client.Register(ctx, in)
	if err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return a.signIn(ctx, "register", in.Email, res)
}

func (a *authService) signIn(ctx context.Context, op, email string, res client.AuthResult) error {
	switch r := res.(type) {
	case client.AuthRejected:
		a.logger.Info(ctx, op+" rejected", "email", common.MaskEmail(email), "code", r.Code)
		return fmt.Errorf("%w: %s", ErrAuthRejected, r.Message)

	case client.Authenticated:
		if err := a.store.SignIn(ctx, r.User, r.Tokens); err != nil {
			return fmt.Errorf("%s error: %w", op, err)
		}
		a.logger.Info(ctx, op+" succeeded", "user_id", r.User.ID, "consent", r.HasConsent)
		if !r.HasConsent {
			return ErrConsentRequired
		}
		return nil

	default:
		return fmt.Errorf("%s error: %w", op, client.ErrBadResponse)
	}
}

// Logout ends the session. The local session is cleared even when the
// server call fails; only local clearing errors are returned.
func (a *authService) Logout(ctx context.Context) error {
	snap := a.store.Snapshot()
	if snap.IsAuthenticated && snap.RefreshToken != "" {
		if err := a.client.Logout(ctx, snap.RefreshToken); err != nil {
			a.logger.Warn(ctx, "server logout failed, clearing locally", "error", err)
		}
	}

	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

// AssignRole changes the account role on the server, then applies the role
// the server confirmed.
func (a *authService) AssignRole(ctx context.Context, role models.Role) error {
	if !a.store.Snapshot().IsAuthenticated {
		return fmt.Errorf("assign role error: %w", client.ErrUnauthorized)
	}

	user, err := a.client.AssignRole(ctx, role)
	if err != nil {
		return fmt.Errorf("assign role error: %w", err)
	}
	if err := a.store.AssignRole(ctx, user.Role); err != nil {
		return fmt.Errorf("assign role error: %w", err)
	}
	return nil
}

// NeedsConsent reports whether the signed-in account has no consent on file.
func (a *authService) NeedsConsent(ctx context.Context) (bool, error) {
	has, err := a.client.ConsentStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("consent status error: %w", err)
	}
	return !has, nil
}
