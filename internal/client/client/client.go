package client

import (
	"context"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
)

// Client is the backend API used by the session core.
//
// Calls other than VerifyToken, RefreshToken, Login and Register authenticate
// with the access token supplied by the configured TokenSource.
type Client interface {
	Login(ctx context.Context, email string, password []byte) (AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	VerifyToken(ctx context.Context, accessToken string) (VerifyResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (RefreshResult, error)
	Logout(ctx context.Context, refreshToken string) error
	AssignRole(ctx context.Context, role models.Role) (*models.User, error)

	ConsentStatus(ctx context.Context) (bool, error)
	AcceptAllConsent(ctx context.Context) error
	RejectOptionalConsent(ctx context.Context) error
	UpdateConsent(ctx context.Context, prefs models.ConsentPreferences, policyVersion string) error

	FeatureGate(ctx context.Context) (*models.FeatureGateSnapshot, error)
	CRSScore(ctx context.Context) (*models.CRSScore, error)
}

// TokenSource returns the access token to attach to authenticated calls.
type TokenSource func() string

type RegisterInput struct {
	Email       string
	Password    []byte
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        models.Role
}

// VerifyResult is either TokenValid or TokenInvalid.
type VerifyResult interface {
	isVerifyResult()
}

type TokenValid struct {
	User models.User
}

type TokenInvalid struct {
	Reason string
}

func (TokenValid) isVerifyResult()   {}
func (TokenInvalid) isVerifyResult() {}

// RefreshResult is either Refreshed or RefreshRejected.
type RefreshResult interface {
	isRefreshResult()
}

type Refreshed struct {
	Tokens models.Tokens
}

type RefreshRejected struct {
	Reason string
}

func (Refreshed) isRefreshResult()       {}
func (RefreshRejected) isRefreshResult() {}

// AuthResult is either Authenticated or AuthRejected.
type AuthResult interface {
	isAuthResult()
}

type Authenticated struct {
	User       models.User
	Tokens     models.Tokens
	HasConsent bool
}

type AuthRejected struct {
	Code    string
	Message string
}

func (Authenticated) isAuthResult() {}
func (AuthRejected) isAuthResult()  {}
