package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the access/refresh pair issued by the server.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present.
func (t Tokens) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// TokenClaims is the subset of access-token claims the client looks at.
// They are informational only: the server remains the authority on validity.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims decodes the access token without verifying its signature.
// Non-JWT tokens yield zero claims and an error.
func (t Tokens) Claims() (TokenClaims, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, &claims); err != nil {
		return TokenClaims{}, err
	}

	tc := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		tc.ExpiresAt = claims.ExpiresAt.Time
	}
	return tc, nil
}

// Session is the client's view of the signed-in user.
//
// IsAuthenticated implies User != nil and a non-empty AccessToken.
type Session struct {
	User            *User  `json:"user"`
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Consistent reports whether s satisfies the session invariant.
func (s Session) Consistent() bool {
	if !s.IsAuthenticated {
		return true
	}
	return s.User != nil && s.AccessToken != ""
}

func (s Session) Tokens() Tokens {
	return Tokens{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Role returns the user's role or "" for anonymous sessions.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Clone returns a deep copy so observers cannot mutate store state.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
