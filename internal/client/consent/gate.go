// Package consent implements the blocking privacy-consent interaction that
// follows a login or registration without consent on file.
package consent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

var (
	// ErrConsentRejected means the session was terminated by the gate.
	ErrConsentRejected = errors.New("consent rejected, session terminated")
	// ErrNotDismissible is returned for implicit dismissal; the gate stays shown.
	ErrNotDismissible = errors.New("consent is required and cannot be dismissed")
	ErrNotShown       = errors.New("consent gate is not shown")
)

type State int

const (
	StateHidden State = iota
	StateShown
	StateAcceptedAll
	StateRejectedAll
	StateCustomized
)

func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateShown:
		return "shown"
	case StateAcceptedAll:
		return "accepted_all"
	case StateRejectedAll:
		return "rejected_all"
	case StateCustomized:
		return "customized"
	default:
		return "unknown"
	}
}

// Choice is one of AcceptAll, RejectAll, Customize or Dismiss.
type Choice interface {
	isChoice()
}

type AcceptAll struct{}

type RejectAll struct{}

type Customize struct {
	Preferences models.ConsentPreferences
}

// Dismiss is an implicit close such as a back gesture or empty input.
type Dismiss struct{}

func (AcceptAll) isChoice() {}
func (RejectAll) isChoice() {}
func (Customize) isChoice() {}
func (Dismiss) isChoice()   {}

// Prompter asks the user for a choice. An error ends the interaction.
type Prompter interface {
	Prompt(ctx context.Context) (Choice, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context) (Choice, error)

func (f PrompterFunc) Prompt(ctx context.Context) (Choice, error) { return f(ctx) }

type API interface {
	AcceptAllConsent(ctx context.Context) error
	RejectOptionalConsent(ctx context.Context) error
	UpdateConsent(ctx context.Context, prefs models.ConsentPreferences, policyVersion string) error
}

// Terminator ends the local session. session.Store satisfies it.
type Terminator interface {
	Clear(ctx context.Context) error
}

type Gate struct {
	api           API
	session       Terminator
	policyVersion string
	logger        logging.Logger

	mu    sync.Mutex
	state State
}

func NewGate(api API, session Terminator, policyVersion string, logger logging.Logger) *Gate {
	return &Gate{
		api:           api,
		session:       session,
		policyVersion: policyVersion,
		logger:        logger.With("component", "consent"),
	}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Show opens the gate. Opening an already shown gate is a no-op.
func (g *Gate) Show(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateShown {
		g.state = StateShown
		g.logger.Info(ctx, "consent gate shown")
	}
}

// Resolve applies a choice to the shown gate. A nil error means consent was
// recorded and the session may proceed; ErrConsentRejected means the session
// has been cleared.
func (g *Gate) Resolve(ctx context.Context, choice Choice) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateShown {
		return ErrNotShown
	}

	switch c := choice.(type) {
	case Dismiss:
		g.logger.Debug(ctx, "implicit dismissal ignored")
		return ErrNotDismissible

	case RejectAll:
		return g.terminate(ctx, StateRejectedAll, nil)

	case AcceptAll:
		if err := g.api.AcceptAllConsent(ctx); err != nil {
			return g.terminate(ctx, StateAcceptedAll, err)
		}
		return g.accept(ctx, StateAcceptedAll)

	case Customize:
		if err := c.Preferences.Validate(); err != nil {
			return g.terminate(ctx, StateCustomized, err)
		}
		var err error
		if c.Preferences == models.RequiredOnly() {
			err = g.api.RejectOptionalConsent(ctx)
		} else {
			err = g.api.UpdateConsent(ctx, c.Preferences, g.policyVersion)
		}
		if err != nil {
			return g.terminate(ctx, StateCustomized, err)
		}
		return g.accept(ctx, StateCustomized)

	default:
		return fmt.Errorf("unsupported consent choice %T", choice)
	}
}

// Run shows the gate and prompts until a terminal choice is made. Implicit
// dismissals re-prompt. A prompt failure, including a cancelled context,
// terminates the session.
func (g *Gate) Run(ctx context.Context, p Prompter) error {
	g.Show(ctx)

	for {
		choice, err := p.Prompt(ctx)
		if err != nil {
			g.mu.Lock()
			err = g.terminate(ctx, StateRejectedAll, err)
			g.mu.Unlock()
			return err
		}

		err = g.Resolve(ctx, choice)
		if errors.Is(err, ErrNotDismissible) {
			continue
		}
		return err
	}
}

func (g *Gate) accept(ctx context.Context, s State) error {
	g.state = s
	g.logger.Info(ctx, "consent recorded", "state", s)
	return nil
}

// terminate clears the session even when ctx is already cancelled.
func (g *Gate) terminate(ctx context.Context, s State, cause error) error {
	g.state = s
	g.logger.Warn(ctx, "consent not given, terminating session", "state", s, "cause", cause)

	if err := g.session.Clear(context.WithoutCancel(ctx)); err != nil {
		g.logger.Error(ctx, "clearing session failed", "error", err)
	}

	if cause != nil {
		return fmt.Errorf("%w: %w", ErrConsentRejected, cause)
	}
	return ErrConsentRejected
}
