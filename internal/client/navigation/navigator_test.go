package navigation

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	s models.Session
}

func (f *fakeSession) Snapshot() models.Session { return f.s }

func signedIn(role models.Role) models.Session {
	return models.Session{User: &models.User{ID: "u-1", Role: role}, AccessToken: "a", RefreshToken: "r", IsAuthenticated: true}
}

func TestNavigator_HoldsSplashWhileVerifying(t *testing.T) {
	var verifying atomic.Bool
	verifying.Store(true)

	sess := &fakeSession{s: signedIn(models.RoleCandidate)}
	n := NewNavigator(sess, verifying.Load, logging.Nop())
	ctx := context.Background()

	assert.Equal(t, RouteSplash, n.Evaluate(ctx))
	assert.Equal(t, "/recruiter/jobs", n.Navigate(ctx, "/recruiter/jobs"))

	verifying.Store(false)
	assert.Equal(t, RouteCandidateDashboard, n.Evaluate(ctx))
}

func TestNavigator_ReactsToSessionChanges(t *testing.T) {
	sess := &fakeSession{s: signedIn(models.RoleRecruiter)}
	n := NewNavigator(sess, nil, logging.Nop())
	ctx := context.Background()

	assert.Equal(t, RouteRecruiterDashboard, n.Evaluate(ctx))
	assert.Equal(t, "/shared/settings", n.Navigate(ctx, "/shared/settings"))

	sess.s = models.Session{}
	n.OnSession(sess.s)
	assert.Equal(t, RouteAuthEntry, n.Current())

	assert.Equal(t, RouteAuthEntry, n.Navigate(ctx, "/candidate/dashboard"))
	assert.Equal(t, "/auth/register", n.Navigate(ctx, "/auth/register"))

	sess.s = signedIn(models.RoleCandidate)
	n.OnSession(sess.s)
	assert.Equal(t, RouteCandidateDashboard, n.Current())
}
