package models

import "errors"

// ErrRequiredConsentMissing is returned when one of the mandatory consent
// categories is switched off.
var ErrRequiredConsentMissing = errors.New("required consent missing")

// ConsentPreferences records the user's privacy choices.
// Essential, DataProcessing, PrivacyPolicy and TermsOfService are mandatory.
type ConsentPreferences struct {
	Essential       bool `json:"essential"`
	Analytics       bool `json:"analytics"`
	Marketing       bool `json:"marketing"`
	Personalization bool `json:"personalization"`
	ThirdParty      bool `json:"thirdParty"`
	DataProcessing  bool `json:"dataProcessing"`
	PrivacyPolicy   bool `json:"privacyPolicy"`
	TermsOfService  bool `json:"termsOfService"`
}

// RequiredOnly returns preferences with just the mandatory categories set.
func RequiredOnly() ConsentPreferences {
	return ConsentPreferences{
		Essential:      true,
		DataProcessing: true,
		PrivacyPolicy:  true,
		TermsOfService: true,
	}
}

// AcceptAll returns preferences with every category enabled.
func AcceptAll() ConsentPreferences {
	p := RequiredOnly()
	p.Analytics = true
	p.Marketing = true
	p.Personalization = true
	p.ThirdParty = true
	return p
}

func (p ConsentPreferences) Validate() error {
	if !p.Essential || !p.DataProcessing || !p.PrivacyPolicy || !p.TermsOfService {
		return ErrRequiredConsentMissing
	}
	return nil
}
