// Package verifier reconciles the rehydrated session with the credential
// vault and the server once per process.
package verifier

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/client/client"
	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/client/vault"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

type State int32

const (
	StateIdle State = iota
	StateVerifying
	StateRefreshing
	StateStayLoggedIn
	StateLoggedOut
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifying:
		return "verifying"
	case StateRefreshing:
		return "refreshing"
	case StateStayLoggedIn:
		return "stay_logged_in"
	case StateLoggedOut:
		return "logged_out"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the machine has finished.
func (s State) Terminal() bool {
	return s == StateStayLoggedIn || s == StateLoggedOut || s == StateAborted
}

// Outcome is one of Valid, Refreshed or LoggedOut.
type Outcome interface {
	isOutcome()
}

// Valid means the session was kept as it was, including anonymous sessions.
type Valid struct{}

// Refreshed means the session was kept with a new token pair.
type Refreshed struct {
	Tokens models.Tokens
}

// LoggedOut means the session was cleared.
type LoggedOut struct {
	Reason string
}

func (Valid) isOutcome()     {}
func (Refreshed) isOutcome() {}
func (LoggedOut) isOutcome() {}

// SessionStore is the part of session.Store the verifier needs.
type SessionStore interface {
	Rehydrated() <-chan struct{}
	Snapshot() models.Session
	UpdateTokens(ctx context.Context, tokens models.Tokens) error
	Clear(ctx context.Context) error
}

// Authenticator is the part of the backend API the verifier needs.
type Authenticator interface {
	VerifyToken(ctx context.Context, accessToken string) (client.VerifyResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (client.RefreshResult, error)
}

type Verifier struct {
	store   SessionStore
	vault   vault.Vault
	api     Authenticator
	timeout time.Duration
	logger  logging.Logger

	started atomic.Bool
	state   atomic.Int32
	done    chan struct{}
	outcome atomic.Pointer[Outcome]
}

type Option func(*Verifier)

// WithTimeout bounds each verify and refresh call.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

func New(store SessionStore, vlt vault.Vault, api Authenticator, logger logging.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		store:   store,
		vault:   vlt,
		api:     api,
		timeout: client.DefaultTimeout,
		logger:  logger.With("component", "verifier"),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) State() State {
	return State(v.state.Load())
}

// InProgress reports whether the session must still be treated as
// unverified. It is true until Run reaches a terminal state.
func (v *Verifier) InProgress() bool {
	return !v.State().Terminal()
}

// Done is closed once the first Run returns.
func (v *Verifier) Done() <-chan struct{} {
	return v.done
}

// Outcome returns the result of the finished run or nil.
func (v *Verifier) Outcome() Outcome {
	if o := v.outcome.Load(); o != nil {
		return *o
	}
	return nil
}

// Run executes the verification once. Any later call returns (nil, nil)
// immediately. Cancelling ctx aborts an in-flight call without touching the
// session and returns the context error.
func (v *Verifier) Run(ctx context.Context) (Outcome, error) {
	if !v.started.CompareAndSwap(false, true) {
		return nil, nil
	}
	defer close(v.done)

	v.setState(ctx, StateVerifying)

	select {
	case <-v.store.Rehydrated():
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		return v.abort(ctx)
	}

	snap := v.store.Snapshot()
	if !snap.IsAuthenticated {
		return v.finish(ctx, StateStayLoggedIn, Valid{}), nil
	}

	tokens, err := v.vault.Get(ctx)
	if ctx.Err() != nil {
		return v.abort(ctx)
	}
	if err != nil {
		var verr *vault.VaultError
		if errors.As(err, &verr) {
			v.logger.Warn(ctx, "credential vault unreadable", "op", verr.Op, "error", verr.Err)
		} else {
			v.logger.Warn(ctx, "credential vault unreadable", "error", err)
		}
		return v.logout(ctx, "credentials unavailable"), nil
	}
	if !tokens.Complete() {
		return v.logout(ctx, "no stored credentials"), nil
	}

	if claims, err := tokens.Claims(); err == nil {
		v.logger.Debug(ctx, "verifying access token", "sub", claims.Subject, "exp", claims.ExpiresAt)
	}

	valid, err := v.verify(ctx, tokens.AccessToken)
	if ctx.Err() != nil {
		return v.abort(ctx)
	}
	if err != nil {
		v.logger.Warn(ctx, "token verification failed, trying refresh", "error", err)
	}
	if valid {
		return v.finish(ctx, StateStayLoggedIn, Valid{}), nil
	}

	v.setState(ctx, StateRefreshing)

	fresh, reason, err := v.refresh(ctx, tokens.RefreshToken)
	if ctx.Err() != nil {
		return v.abort(ctx)
	}
	if err != nil {
		v.logger.Warn(ctx, "token refresh failed", "error", err)
		return v.logout(ctx, "refresh failed"), nil
	}
	if reason != "" {
		return v.logout(ctx, reason), nil
	}

	if err := v.store.UpdateTokens(ctx, fresh); err != nil {
		if ctx.Err() != nil {
			return v.abort(ctx)
		}
		v.logger.Error(ctx, "storing refreshed tokens failed", "error", err)
		return v.logout(ctx, "token update failed"), nil
	}
	return v.finish(ctx, StateStayLoggedIn, Refreshed{Tokens: fresh}), nil
}

func (v *Verifier) verify(ctx context.Context, accessToken string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.api.VerifyToken(callCtx, accessToken)
	if err != nil {
		return false, err
	}

	switch r := res.(type) {
	case client.TokenValid:
		return true, nil
	case client.TokenInvalid:
		v.logger.Info(ctx, "access token rejected", "reason", r.Reason)
		return false, nil
	default:
		return false, client.ErrBadResponse
	}
}

// refresh returns the new pair, or a rejection reason, or an error.
func (v *Verifier) refresh(ctx context.Context, refreshToken string) (models.Tokens, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	res, err := v.api.RefreshToken(callCtx, refreshToken)
	if err != nil {
		return models.Tokens{}, "", err
	}

	switch r := res.(type) {
	case client.Refreshed:
		if !r.Tokens.Complete() {
			return models.Tokens{}, "", client.ErrBadResponse
		}
		return r.Tokens, "", nil
	case client.RefreshRejected:
		v.logger.Info(ctx, "refresh token rejected", "reason", r.Reason)
		return models.Tokens{}, "refresh rejected", nil
	default:
		return models.Tokens{}, "", client.ErrBadResponse
	}
}

func (v *Verifier) logout(ctx context.Context, reason string) Outcome {
	if err := v.store.Clear(ctx); err != nil {
		v.logger.Error(ctx, "clearing session failed", "error", err)
	}
	return v.finish(ctx, StateLoggedOut, LoggedOut{Reason: reason})
}

func (v *Verifier) abort(ctx context.Context) (Outcome, error) {
	v.setState(ctx, StateAborted)
	return nil, ctx.Err()
}

func (v *Verifier) finish(ctx context.Context, s State, o Outcome) Outcome {
	v.outcome.Store(&o)
	v.setState(ctx, s)
	return o
}

func (v *Verifier) setState(ctx context.Context, s State) {
	prev := State(v.state.Swap(int32(s)))
	v.logger.Debug(ctx, "verifier transition", "from", prev, "to", s)
}
