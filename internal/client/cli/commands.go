package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/jobcoach/internal/client/client"
	"github.com/dmitrijs2005/jobcoach/internal/client/consent"
	"github.com/dmitrijs2005/jobcoach/internal/client/features"
	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account details and creates the account. When
// the new account has no consent on file the consent prompt follows.
func (a *App) Register(ctx context.Context) error {
	var in client.RegisterInput
	var err error

	if in.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if in.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if in.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if in.PhoneNumber, err = getSimpleText(a.reader, "Phone number (optional)", a.out); err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Role (candidate/recruiter)", a.out)
	if err != nil {
		return err
	}
	if in.Role, err = models.ParseRole(role); err != nil {
		return err
	}

	if in.Password, err = getPassword(a.out); err != nil {
		return err
	}
	defer common.WipeByteArray(in.Password)

	return a.afterAuth(a.core.Register(ctx, in, a.consentPrompter()))
}

// Login prompts for credentials and signs in. When the account has no
// consent on file the consent prompt follows.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.afterAuth(a.core.Login(ctx, email, password, a.consentPrompter()))
}

func (a *App) afterAuth(err error) error {
	if errors.Is(err, consent.ErrConsentRejected) {
		a.println("Consent to the privacy policy, terms of service and data processing is required to use JobCoach.")
		a.println("You have been signed out. Please log in again to continue.")
		return nil
	}
	if err != nil {
		return err
	}

	s := a.core.Session()
	name := s.User.FullName()
	if name == "" {
		name = s.User.Email
	}
	a.println(fmt.Sprintf("Welcome, %s!", name))
	a.println("Current screen:", a.core.Route())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.core.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s := a.core.Session()
	a.println("Verification:", a.core.VerifierState())
	a.println("Screen:", a.core.Route())
	if !s.IsAuthenticated {
		a.println("Not logged in.")
		return nil
	}

	a.println("User:", s.User.FullName(), "<"+s.User.Email+">")
	a.println("Role:", s.User.Role)
	if claims, err := s.Tokens().Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		a.println("Access token expires:", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	if score, ok := a.core.Score(); ok {
		a.println(fmt.Sprintf("CRS score: %d (%s)", score, features.LevelForScore(score).Name))
	}
	return nil
}

func (a *App) Route(ctx context.Context, path string) error {
	got := a.core.Navigate(ctx, path)
	if got != path {
		a.println("Redirected to", got)
		return nil
	}
	a.println("Now on", got)
	return nil
}

// Features lists every known feature with its state.
func (a *App) Features(ctx context.Context) error {
	ids := make([]string, 0, len(features.DefaultTable))
	for id := range features.DefaultTable {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		li, lj := features.DefaultTable[ids[i]], features.DefaultTable[ids[j]]
		if li.MinScore != lj.MinScore {
			return li.MinScore < lj.MinScore
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		a.println(a.describe(id))
	}
	return nil
}

func (a *App) Access(ctx context.Context, featureID string) error {
	a.println(a.describe(featureID))
	return nil
}

func (a *App) describe(featureID string) string {
	if a.core.HasAccess(featureID) {
		return fmt.Sprintf("  [x] %s", featureID)
	}
	if req := a.core.Requirement(featureID); req != nil {
		return fmt.Sprintf("  [ ] %s (requires level %d: %s)", featureID, req.RequiredLevel, req.RequiredLevelDisplay)
	}
	return fmt.Sprintf("  [ ] %s", featureID)
}

// Refresh asks for an immediate feature-gate refetch, as on app foreground.
func (a *App) Refresh(ctx context.Context) error {
	a.core.Foreground()
	a.println("Refreshing feature access...")
	return nil
}

func (a *App) Role(ctx context.Context, role string) error {
	r, err := models.ParseRole(role)
	if err != nil {
		return err
	}
	if err := a.core.AssignRole(ctx, r); err != nil {
		return err
	}
	a.println("Role set to", r, "- now on", a.core.Route())
	return nil
}
