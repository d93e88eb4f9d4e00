package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/jobcoach/internal/client/consent"
	"github.com/dmitrijs2005/jobcoach/internal/client/models"
)

// consentPrompter asks for consent on the terminal. An empty answer is an
// implicit dismissal, which the gate refuses.
type consentPrompter struct {
	reader *bufio.Reader
	out    io.Writer
	shown  bool
}

func (a *App) consentPrompter() consent.Prompter {
	return &consentPrompter{reader: a.reader, out: a.out}
}

const consentBanner = `
We need your consent before you continue.
Your privacy choices:
  a - accept all
  r - reject all (you will be signed out)
  c - customize`

func (p *consentPrompter) Prompt(ctx context.Context) (consent.Choice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := "Choose a, r or c"
	if !p.shown {
		prompt = consentBanner + "\n" + prompt
		p.shown = true
	}

	answer, err := GetSimpleText(p.reader, prompt, p.out)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(answer) {
	case "a", "accept":
		return consent.AcceptAll{}, nil
	case "r", "reject":
		return consent.RejectAll{}, nil
	case "c", "customize":
		prefs, err := p.customize()
		if err != nil {
			return nil, err
		}
		return consent.Customize{Preferences: prefs}, nil
	case "":
		fmt.Fprintln(p.out, "A choice is required to continue.")
		return consent.Dismiss{}, nil
	default:
		fmt.Fprintln(p.out, "Unknown choice:", answer)
		return consent.Dismiss{}, nil
	}
}

func (p *consentPrompter) customize() (models.ConsentPreferences, error) {
	prefs := models.RequiredOnly()

	questions := []struct {
		prompt string
		dst    *bool
		def    bool
	}{
		{"Allow analytics?", &prefs.Analytics, false},
		{"Allow marketing communication?", &prefs.Marketing, false},
		{"Allow personalization?", &prefs.Personalization, false},
		{"Allow sharing with third parties?", &prefs.ThirdParty, false},
		{"Accept data processing (required)?", &prefs.DataProcessing, true},
		{"Accept the privacy policy (required)?", &prefs.PrivacyPolicy, true},
		{"Accept the terms of service (required)?", &prefs.TermsOfService, true},
	}
	for _, q := range questions {
		v, err := GetYesNo(p.reader, q.prompt, q.def, p.out)
		if err != nil {
			return models.ConsentPreferences{}, err
		}
		*q.dst = v
	}
	return prefs, nil
}
