// Package session owns the client's session state: the signed-in user, the
// token pair and the authenticated flag.
//
// Store is the only place the session is mutated. Every token write goes to
// the CredentialVault first and only then to memory and the persisted copy,
// so the vault and the store never disagree about the current pair. The
// persisted copy is restored asynchronously by Rehydrate, which takes the
// token pair from the vault; consumers that must not run on stale state wait
// on Rehydrated().
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/client/vault"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

var (
	ErrNotAuthenticated = errors.New("session is not authenticated")
	ErrInvalidSession   = errors.New("invalid session data")
)

// Persister saves and restores the session across process restarts.
// Load returns a zero Session when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
}

// Listener receives every new session snapshot in mutation order.
// Listeners run synchronously on the mutating goroutine and must not call
// Store mutators.
type Listener func(models.Session)

type Store struct {
	// writeMu serializes mutations together with their notifications so
	// listeners observe snapshots in the order they were produced.
	writeMu sync.Mutex

	mu    sync.RWMutex
	state models.Session

	vault     vault.Vault
	persister Persister
	logger    logging.Logger

	rehydrateOnce sync.Once
	rehydrated    chan struct{}

	subsMu sync.Mutex
	subs   map[int]Listener
	nextID int
}

func NewStore(v vault.Vault, p Persister, logger logging.Logger) *Store {
	return &Store{
		vault:      v,
		persister:  p,
		logger:     logger.With("component", "session"),
		rehydrated: make(chan struct{}),
		subs:       make(map[int]Listener),
	}
}

// Rehydrate restores the persisted session. It runs at most once; the
// Rehydrated channel is closed when it finishes, whether or not loading
// succeeded. A failed or inconsistent load leaves an anonymous session.
func (s *Store) Rehydrate(ctx context.Context) error {
	var err error
	s.rehydrateOnce.Do(func() {
		defer close(s.rehydrated)

		var loaded models.Session
		loaded, err = s.persister.Load(ctx)
		if err != nil {
			s.logger.Warn(ctx, "session rehydration failed, starting anonymous", "error", err)
			err = fmt.Errorf("rehydrate: %w", err)
			return
		}
		if !loaded.Consistent() {
			s.logger.Warn(ctx, "persisted session inconsistent, starting anonymous")
			err = fmt.Errorf("rehydrate: %w", ErrInvalidSession)
			return
		}

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if loaded.IsAuthenticated {
			loaded = s.vaultTokens(ctx, loaded)
		}
		s.set(loaded)
		s.logger.Debug(ctx, "session rehydrated", "authenticated", loaded.IsAuthenticated)
		s.notify(loaded)
	})
	return err
}

// vaultTokens replaces the persisted token pair of loaded with the vault's
// pair and repairs the persisted copy when they differ. An unreadable or
// incomplete vault leaves loaded as is; the verifier logs such a session out.
func (s *Store) vaultTokens(ctx context.Context, loaded models.Session) models.Session {
	tokens, err := s.vault.Get(ctx)
	if err != nil || !tokens.Complete() {
		s.logger.Warn(ctx, "vault has no usable credentials for persisted session", "error", err)
		return loaded
	}
	if tokens == loaded.Tokens() {
		return loaded
	}

	s.logger.Warn(ctx, "persisted tokens are stale, using vault pair")
	loaded.AccessToken = tokens.AccessToken
	loaded.RefreshToken = tokens.RefreshToken
	if err := s.persister.Save(ctx, loaded.Clone()); err != nil {
		s.logger.Warn(ctx, "session persist failed", "error", err)
	}
	return loaded
}

// Rehydrated is closed once Rehydrate has finished.
func (s *Store) Rehydrated() <-chan struct{} {
	return s.rehydrated
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// AccessToken returns the current access token or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// SignIn records a successful login or registration.
func (s *Store) SignIn(ctx context.Context, user models.User, tokens models.Tokens) error {
	if user.ID == "" || !user.Role.Valid() || !tokens.Complete() {
		return ErrInvalidSession
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.vault.Set(ctx, tokens); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	next := models.Session{
		User:            &user,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		IsAuthenticated: true,
	}
	s.commit(ctx, next)
	s.logger.Info(ctx, "signed in", "user_id", user.ID, "role", user.Role)
	return nil
}

// UpdateTokens replaces the token pair of the authenticated session.
func (s *Store) UpdateTokens(ctx context.Context, tokens models.Tokens) error {
	if !tokens.Complete() {
		return ErrInvalidSession
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Snapshot()
	if !next.IsAuthenticated {
		return ErrNotAuthenticated
	}

	if err := s.vault.Set(ctx, tokens); err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}

	next.AccessToken = tokens.AccessToken
	next.RefreshToken = tokens.RefreshToken
	s.commit(ctx, next)
	s.logger.Debug(ctx, "tokens updated")
	return nil
}

// AssignRole changes the role of the signed-in user. It is the only way the
// role changes after account creation.
func (s *Store) AssignRole(ctx context.Context, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("assign role: unknown role %q", role)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Snapshot()
	if !next.IsAuthenticated {
		return ErrNotAuthenticated
	}
	next.User.Role = role
	s.commit(ctx, next)
	s.logger.Info(ctx, "role assigned", "user_id", next.User.ID, "role", role)
	return nil
}

// Clear resets the session to anonymous and wipes the vault. The in-memory
// state is always cleared; storage errors are returned afterwards.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var errs []error
	if err := s.vault.Clear(ctx); err != nil {
		s.logger.Error(ctx, "vault clear failed", "error", err)
		errs = append(errs, err)
	}

	s.set(models.Session{})
	if err := s.persister.Save(ctx, models.Session{}); err != nil {
		s.logger.Error(ctx, "session persist failed", "error", err)
		errs = append(errs, err)
	}
	s.notify(models.Session{})
	s.logger.Info(ctx, "session cleared")

	return errors.Join(errs...)
}

// Subscribe registers fn for every subsequent session change and returns a
// function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// commit stores next in memory, persists it and notifies listeners.
// A persistence failure is logged: the in-memory state and the vault are
// already authoritative for this process.
func (s *Store) commit(ctx context.Context, next models.Session) {
	s.set(next)
	if err := s.persister.Save(ctx, next.Clone()); err != nil {
		s.logger.Warn(ctx, "session persist failed", "error", err)
	}
	s.notify(next)
}

func (s *Store) set(next models.Session) {
	s.mu.Lock()
	s.state = next.Clone()
	s.mu.Unlock()
}

func (s *Store) notify(snapshot models.Session) {
	s.subsMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.subsMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
}
