package navigation

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

// SessionReader is satisfied by session.Store.
type SessionReader interface {
	Snapshot() models.Session
}

// Navigator tracks the current route and applies Decide whenever the route,
// the session or the verification status changes.
type Navigator struct {
	mu      sync.Mutex
	current string

	session   SessionReader
	verifying func() bool
	logger    logging.Logger
}

// NewNavigator starts on the splash route. verifying reports whether the
// session verifier is still running; nil means it never is.
func NewNavigator(s SessionReader, verifying func() bool, logger logging.Logger) *Navigator {
	if verifying == nil {
		verifying = func() bool { return false }
	}
	return &Navigator{
		current:   RouteSplash,
		session:   s,
		verifying: verifying,
		logger:    logger.With("component", "navigator"),
	}
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate moves to path and returns where the guard left the user.
func (n *Navigator) Navigate(ctx context.Context, path string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	return n.evaluate(ctx, n.session.Snapshot())
}

// Evaluate re-applies the guard to the current route.
func (n *Navigator) Evaluate(ctx context.Context) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.evaluate(ctx, n.session.Snapshot())
}

// OnSession is a session listener.
func (n *Navigator) OnSession(s models.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.evaluate(context.Background(), s)
}

func (n *Navigator) evaluate(ctx context.Context, s models.Session) string {
	target, ok := Decide(Input{
		IsAuthenticated: s.IsAuthenticated,
		Role:            s.Role(),
		Group:           GroupOf(n.current),
		IsVerifying:     n.verifying(),
	})
	if ok && target != n.current {
		n.logger.Info(ctx, "redirect", "from", n.current, "to", target)
		n.current = target
	}
	return n.current
}
