// Package app wires the session core together and owns its lifetime.
//
// Startup runs rehydration and the one-shot verifier side by side; the
// verifier waits for the rehydration signal itself. A restored session is
// kept only if the account has consent on file. Session changes are fanned
// out to the navigator and to the feature poller, which only runs while a
// verified session is signed in and no consent prompt is pending.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/jobcoach/internal/client/client"
	"github.com/dmitrijs2005/jobcoach/internal/client/config"
	"github.com/dmitrijs2005/jobcoach/internal/client/consent"
	"github.com/dmitrijs2005/jobcoach/internal/client/features"
	"github.com/dmitrijs2005/jobcoach/internal/client/migrations"
	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/client/navigation"
	"github.com/dmitrijs2005/jobcoach/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/jobcoach/internal/client/services"
	"github.com/dmitrijs2005/jobcoach/internal/client/session"
	"github.com/dmitrijs2005/jobcoach/internal/client/vault"
	"github.com/dmitrijs2005/jobcoach/internal/client/verifier"
	"github.com/dmitrijs2005/jobcoach/internal/dbx"
	"github.com/dmitrijs2005/jobcoach/internal/filex"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Deps are the collaborators Assemble builds the App from.
type Deps struct {
	Config    *config.Config
	Logger    logging.Logger
	API       client.Client
	Vault     vault.Vault
	Persister session.Persister
	// DB, when set, is closed by Close.
	DB *sql.DB
}

type App struct {
	cfg    *config.Config
	logger logging.Logger
	db     *sql.DB
	api    client.Client

	store     *session.Store
	verifier  *verifier.Verifier
	navigator *navigation.Navigator
	engine    *features.Engine
	poller    *features.Poller
	auth      services.AuthService

	unsubscribe func()

	// consentPending holds navigation and polling while a fresh sign-in
	// waits on the consent gate.
	consentPending atomic.Bool

	mu           sync.Mutex
	baseCtx      context.Context
	pollerCancel context.CancelFunc
}

// New opens local storage under cfg.DataDir and cfg.SecureDir and connects
// the HTTP API client.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if _, err := filex.EnsureDir(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := dbx.OpenSQLite(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	if err := migrations.Up(ctx, db); err != nil {
		return nil, err
	}

	repo := metadata.NewSQLiteRepository(db)
	deviceID, err := metadata.DeviceID(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}
	key, err := vault.LoadDeviceKey(ctx, cfg.SecureDir, repo)
	if err != nil {
		return nil, err
	}

	api, err := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithDeviceID(deviceID),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	a := Assemble(Deps{
		Config:    cfg,
		Logger:    logger,
		API:       api,
		Vault:     vault.NewSQLiteVault(db, key),
		Persister: session.NewMetadataPersister(repo, key),
		DB:        db,
	})
	api.SetTokenSource(a.store.AccessToken)
	return a, nil
}

// Assemble builds an App from ready collaborators.
func Assemble(d Deps) *App {
	a := &App{
		cfg:     d.Config,
		logger:  d.Logger.With("component", "app"),
		db:      d.DB,
		api:     d.API,
		baseCtx: context.Background(),
	}

	a.store = session.NewStore(d.Vault, d.Persister, d.Logger)
	a.verifier = verifier.New(a.store, d.Vault, d.API, d.Logger, verifier.WithTimeout(d.Config.RequestTimeout))
	a.navigator = navigation.NewNavigator(a.store, a.verifier.InProgress, d.Logger)
	a.engine = features.NewEngine(features.DefaultTable, features.WithStaleAfter(2*d.Config.FeatureGatePollInterval))
	a.poller = features.NewPoller(d.API, a.engine, d.Config.FeatureGatePollInterval, d.Logger)
	a.auth = services.NewAuthService(d.API, a.store, d.Logger)

	a.unsubscribe = a.store.Subscribe(a.onSession)
	return a
}

// Start restores and verifies the session, then settles navigation.
// ctx bounds the App's background work; cancelling it aborts verification
// and stops the poller.
func (a *App) Start(ctx context.Context) (verifier.Outcome, error) {
	a.mu.Lock()
	a.baseCtx = ctx
	a.mu.Unlock()

	var outcome verifier.Outcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.store.Rehydrate(gctx); err != nil {
			a.logger.Warn(gctx, "starting without persisted session", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		outcome, err = a.verifier.Run(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("session verification: %w", err)
	}

	if a.store.Snapshot().IsAuthenticated {
		kept, err := a.keepWithConsent(ctx)
		if err != nil {
			return nil, err
		}
		if !kept {
			outcome = verifier.LoggedOut{Reason: "consent not on file"}
		}
	}

	route := a.navigator.Evaluate(ctx)
	snap := a.store.Snapshot()
	if snap.IsAuthenticated {
		a.startPoller()
	}
	a.logger.Info(ctx, "startup complete", "state", a.verifier.State(), "authenticated", snap.IsAuthenticated, "route", route)
	return outcome, nil
}

// keepWithConsent logs a restored session out when its account has no
// consent on file, which is the case after a sign-in whose consent prompt
// was never answered. A failed status query counts as missing consent.
func (a *App) keepWithConsent(ctx context.Context) (bool, error) {
	need, err := a.auth.NeedsConsent(ctx)
	if ctx.Err() != nil {
		return false, fmt.Errorf("consent status: %w", ctx.Err())
	}
	if err == nil && !need {
		return true, nil
	}

	a.logger.Warn(ctx, "restored session has no consent, signing out", "error", err)
	if err := a.auth.Logout(ctx); err != nil {
		a.logger.Error(ctx, "sign out failed", "error", err)
	}
	return false, nil
}

var errNoPrompter = errors.New("no consent prompter")

// Login authenticates and, when the account has no consent on file, runs
// the consent gate with p before the session is used. A nil p rejects
// consent.
func (a *App) Login(ctx context.Context, email string, password []byte, p consent.Prompter) error {
	return a.signIn(ctx, p, func() error { return a.auth.Login(ctx, email, password) })
}

func (a *App) Register(ctx context.Context, in client.RegisterInput, p consent.Prompter) error {
	return a.signIn(ctx, p, func() error { return a.auth.Register(ctx, in) })
}

// signIn keeps the navigator and the poller away from the new session until
// authenticate has succeeded and any consent prompt has been accepted.
func (a *App) signIn(ctx context.Context, p consent.Prompter, authenticate func() error) error {
	a.consentPending.Store(true)
	err := authenticate()
	if errors.Is(err, services.ErrConsentRequired) {
		err = a.runConsent(ctx, p)
	}
	a.consentPending.Store(false)

	if err != nil {
		return err
	}
	a.land(ctx)
	return nil
}

func (a *App) runConsent(ctx context.Context, p consent.Prompter) error {
	if p == nil {
		p = consent.PrompterFunc(func(context.Context) (consent.Choice, error) { return nil, errNoPrompter })
	}
	gate := consent.NewGate(a.api, a.store, a.cfg.PolicyVersion, a.logger)
	return gate.Run(ctx, p)
}

// land applies the current session to navigation and polling.
func (a *App) land(ctx context.Context) {
	a.navigator.Evaluate(ctx)
	if a.store.Snapshot().IsAuthenticated && !a.verifier.InProgress() {
		a.startPoller()
	}
}

func (a *App) Logout(ctx context.Context) error {
	return a.auth.Logout(ctx)
}

func (a *App) AssignRole(ctx context.Context, role models.Role) error {
	return a.auth.AssignRole(ctx, role)
}

// Navigate moves to path and returns the route the guard settled on.
// Navigation is frozen while a consent prompt is pending.
func (a *App) Navigate(ctx context.Context, path string) string {
	if a.consentPending.Load() {
		return a.navigator.Current()
	}
	return a.navigator.Navigate(ctx, path)
}

func (a *App) Route() string {
	return a.navigator.Current()
}

func (a *App) Session() models.Session {
	return a.store.Snapshot()
}

func (a *App) VerifierState() verifier.State {
	return a.verifier.State()
}

func (a *App) HasAccess(featureID string) bool {
	return a.engine.HasAccess(featureID)
}

func (a *App) Requirement(featureID string) *features.Requirement {
	return a.engine.Requirement(featureID)
}

func (a *App) Score() (int, bool) {
	return a.engine.Score()
}

// Foreground asks the poller for an immediate refetch.
func (a *App) Foreground() {
	a.poller.Foreground()
}

// Close stops background work and releases local storage.
func (a *App) Close() error {
	a.unsubscribe()
	a.stopPoller()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// onSession runs on every session change.
func (a *App) onSession(s models.Session) {
	if !s.IsAuthenticated {
		a.navigator.OnSession(s)
		a.stopPoller()
		a.engine.Reset()
		return
	}
	if a.consentPending.Load() {
		return
	}

	a.navigator.OnSession(s)
	if !a.verifier.InProgress() {
		a.startPoller()
	}
}

func (a *App) startPoller() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pollerCancel != nil || a.baseCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(a.baseCtx)
	a.pollerCancel = cancel

	go func() {
		if err := a.poller.Run(ctx); err != nil {
			a.logger.Error(ctx, "feature poller stopped", "error", err)
		}
	}()
}

// stopPoller cancels the poller without waiting for it; results of a fetch
// still in flight are discarded by the engine reset that follows.
func (a *App) stopPoller() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pollerCancel == nil {
		return
	}
	a.pollerCancel()
	a.pollerCancel = nil
}
