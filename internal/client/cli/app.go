package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/jobcoach/internal/client/client"
	"github.com/dmitrijs2005/jobcoach/internal/client/consent"
	"github.com/dmitrijs2005/jobcoach/internal/client/features"
	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/client/verifier"
)

// Core is the part of app.App the terminal front-end drives.
type Core interface {
	Login(ctx context.Context, email string, password []byte, p consent.Prompter) error
	Register(ctx context.Context, in client.RegisterInput, p consent.Prompter) error
	Logout(ctx context.Context) error
	AssignRole(ctx context.Context, role models.Role) error

	Navigate(ctx context.Context, path string) string
	Route() string
	Session() models.Session
	VerifierState() verifier.State

	HasAccess(featureID string) bool
	Requirement(featureID string) *features.Requirement
	Score() (int, bool)
	Foreground()
}

type App struct {
	core   Core
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(core Core, in io.Reader, out io.Writer) *App {
	return &App{core: core, reader: bufio.NewReader(in), out: out}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to JobCoach CLI (type 'help' for commands)")
	fmt.Fprintln(a.out, "Current screen:", a.core.Route())
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.core.Session().IsAuthenticated
}

// status renders the prompt prefix, e.g. "ann@example.com candidate /candidate/dashboard".
func (a *App) status() string {
	s := a.core.Session()
	if !s.IsAuthenticated {
		return a.core.Route()
	}
	return fmt.Sprintf("%s %s %s", s.User.Email, s.User.Role, a.core.Route())
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
