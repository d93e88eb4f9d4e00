// Package vault implements the CredentialVault: durable, device-bound storage
// for the access/refresh token pair.
//
// Tokens are sealed with AES-GCM under a key derived from a per-device secret
// kept in the secure directory, which lives outside the exportable data
// directory. The pair is written in a single transaction, so a reader sees
// both tokens or neither.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
)

var (
	// ErrVaultCorrupt means the stored pair cannot be trusted: one token is
	// missing or a value fails authentication.
	ErrVaultCorrupt = errors.New("credential vault corrupt")

	// ErrIncompleteTokens is returned by Set when either token is empty.
	ErrIncompleteTokens = errors.New("both tokens are required")
)

// VaultError wraps every failure of the underlying storage.
type VaultError struct {
	Op  string
	Err error
}

func (e *VaultError) Error() string {
	return fmt.Sprintf("vault %s: %v", e.Op, e.Err)
}

func (e *VaultError) Unwrap() error {
	return e.Err
}

// Vault is the CredentialVault contract.
//
// Get returns zero Tokens and a nil error when nothing is stored.
type Vault interface {
	Set(ctx context.Context, tokens models.Tokens) error
	Get(ctx context.Context) (models.Tokens, error)
	Clear(ctx context.Context) error
}
