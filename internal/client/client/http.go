package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobcoach/internal/client/models"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

// DefaultTimeout bounds every API call unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks GraphQL over HTTP to the backend.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	deviceID string
	tokens   TokenSource
	logger   logging.Logger
}

type Option func(*HTTPClient)

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithDeviceID(id string) Option {
	return func(c *HTTPClient) { c.deviceID = id }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient builds a client for the GraphQL endpoint under baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is empty")
	}

	c := &HTTPClient{
		endpoint: baseURL + "/graphql",
		http:     &http.Client{},
		timeout:  DefaultTimeout,
		tokens:   func() string { return "" },
		logger:   logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetTokenSource replaces the access-token provider. It must be called before
// the client is shared between goroutines.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

type authPayload struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	HasConsent   bool        `json:"hasConsent"`
	User         models.User `json:"user"`
}

func (c *HTTPClient) authenticate(ctx context.Context, op, query, field string, vars map[string]any) (AuthResult, error) {
	payload, err := c.do(ctx, op, query, vars, field, "")
	if err != nil {
		return nil, err
	}

	var ok authPayload
	var rejected authError
	name, err := decodeUnion(op, payload, map[string]any{"AuthPayload": &ok, "AuthError": &rejected})
	if err != nil {
		return nil, err
	}

	switch name {
	case "AuthPayload":
		tokens := models.Tokens{AccessToken: ok.AccessToken, RefreshToken: ok.RefreshToken}
		if !tokens.Complete() || ok.User.ID == "" {
			return nil, fmt.Errorf("%w: %s: incomplete auth payload", ErrBadResponse, op)
		}
		role, err := models.ParseRole(string(ok.User.Role))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, op, err)
		}
		ok.User.Role = role
		return Authenticated{User: ok.User, Tokens: tokens, HasConsent: ok.HasConsent}, nil
	default:
		return AuthRejected{Code: rejected.Code, Message: rejected.Message}, nil
	}
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (AuthResult, error) {
	return c.authenticate(ctx, "Login", loginMutation, "login", map[string]any{
		"email":    email,
		"password": string(password),
	})
}

func (c *HTTPClient) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	return c.authenticate(ctx, "Register", registerMutation, "register", map[string]any{
		"input": map[string]any{
			"email":       in.Email,
			"password":    string(in.Password),
			"firstName":   in.FirstName,
			"lastName":    in.LastName,
			"phoneNumber": in.PhoneNumber,
			"role":        strings.ToUpper(string(in.Role)),
		},
	})
}

func (c *HTTPClient) VerifyToken(ctx context.Context, accessToken string) (VerifyResult, error) {
	payload, err := c.do(ctx, "VerifyToken", verifyTokenQuery, nil, "verifyToken", accessToken)
	if err != nil {
		return nil, err
	}

	var verification struct {
		Valid bool         `json:"valid"`
		Role  string       `json:"role"`
		User  *models.User `json:"user"`
	}
	var rejected authError
	name, err := decodeUnion("VerifyToken", payload, map[string]any{"TokenVerification": &verification, "AuthError": &rejected})
	if err != nil {
		return nil, err
	}

	if name == "AuthError" {
		return TokenInvalid{Reason: rejected.Message}, nil
	}
	if !verification.Valid || verification.User == nil {
		return TokenInvalid{Reason: "token not valid"}, nil
	}

	user := *verification.User
	roleName := verification.Role
	if roleName == "" {
		roleName = string(user.Role)
	}
	role, err := models.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("%w: VerifyToken: %v", ErrBadResponse, err)
	}
	user.Role = role
	return TokenValid{User: user}, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (RefreshResult, error) {
	payload, err := c.do(ctx, "RefreshToken", refreshTokenMutation, map[string]any{"refreshToken": refreshToken}, "refreshToken", "")
	if err != nil {
		return nil, err
	}

	var tokens models.Tokens
	var rejected authError
	name, err := decodeUnion("RefreshToken", payload, map[string]any{"AuthTokens": &tokens, "AuthError": &rejected})
	if err != nil {
		return nil, err
	}

	if name == "AuthError" {
		return RefreshRejected{Reason: rejected.Message}, nil
	}
	if !tokens.Complete() {
		return nil, fmt.Errorf("%w: RefreshToken: incomplete token pair", ErrBadResponse)
	}
	return Refreshed{Tokens: tokens}, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	payload, err := c.do(ctx, "Logout", logoutMutation, map[string]any{"refreshToken": refreshToken}, "logout", c.tokens())
	if err != nil {
		return err
	}

	var result struct {
		Success bool `json:"success"`
	}
	var rejected authError
	name, err := decodeUnion("Logout", payload, map[string]any{"LogoutResult": &result, "AuthError": &rejected})
	if err != nil {
		return err
	}
	if name == "AuthError" {
		return fmt.Errorf("%w: Logout: %s", ErrUnauthorized, rejected.Message)
	}
	if !result.Success {
		return fmt.Errorf("%w: Logout: server reported failure", ErrBadResponse)
	}
	return nil
}

func (c *HTTPClient) AssignRole(ctx context.Context, role models.Role) (*models.User, error) {
	payload, err := c.do(ctx, "AssignRole", assignRoleMutation, map[string]any{"role": strings.ToUpper(string(role))}, "assignRole", c.tokens())
	if err != nil {
		return nil, err
	}

	var user models.User
	var rejected authError
	name, err := decodeUnion("AssignRole", payload, map[string]any{"User": &user, "AuthError": &rejected})
	if err != nil {
		return nil, err
	}
	if name == "AuthError" {
		return nil, fmt.Errorf("%w: AssignRole: %s", ErrUnauthorized, rejected.Message)
	}

	parsed, err := models.ParseRole(string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: AssignRole: %v", ErrBadResponse, err)
	}
	user.Role = parsed
	return &user, nil
}

func (c *HTTPClient) ConsentStatus(ctx context.Context) (bool, error) {
	payload, err := c.do(ctx, "ConsentStatus", consentStatusQuery, nil, "consentStatus", c.tokens())
	if err != nil {
		return false, err
	}

	var status struct {
		HasConsent bool `json:"hasConsent"`
	}
	if err := json.Unmarshal(payload, &status); err != nil {
		return false, fmt.Errorf("%w: ConsentStatus: %v", ErrBadResponse, err)
	}
	return status.HasConsent, nil
}

func (c *HTTPClient) saveConsent(ctx context.Context, op, query, field string, vars map[string]any) error {
	payload, err := c.do(ctx, op, query, vars, field, c.tokens())
	if err != nil {
		return err
	}

	var record struct {
		ID string `json:"id"`
	}
	var failed struct {
		Message string `json:"message"`
	}
	name, err := decodeUnion(op, payload, map[string]any{"ConsentRecord": &record, "ConsentError": &failed})
	if err != nil {
		return err
	}
	if name == "ConsentError" {
		return fmt.Errorf("%w: %s: %s", ErrConsentFailed, op, failed.Message)
	}
	return nil
}

func (c *HTTPClient) AcceptAllConsent(ctx context.Context) error {
	return c.saveConsent(ctx, "AcceptAllConsent", acceptAllConsentMutation, "acceptAllConsent", nil)
}

func (c *HTTPClient) RejectOptionalConsent(ctx context.Context) error {
	return c.saveConsent(ctx, "RejectOptionalConsent", rejectOptionalConsentMutation, "rejectOptionalConsent", nil)
}

func (c *HTTPClient) UpdateConsent(ctx context.Context, prefs models.ConsentPreferences, policyVersion string) error {
	return c.saveConsent(ctx, "UpdateConsent", updateConsentMutation, "updateConsent", map[string]any{
		"preferences":   prefs,
		"policyVersion": policyVersion,
	})
}

func (c *HTTPClient) FeatureGate(ctx context.Context) (*models.FeatureGateSnapshot, error) {
	payload, err := c.do(ctx, "FeatureGate", featureGateQuery, nil, "featureGate", c.tokens())
	if err != nil {
		return nil, err
	}

	var snapshot models.FeatureGateSnapshot
	var rejected authError
	name, err := decodeUnion("FeatureGate", payload, map[string]any{"FeatureGateSnapshot": &snapshot, "AuthError": &rejected})
	if err != nil {
		return nil, err
	}
	if name == "AuthError" {
		return nil, fmt.Errorf("%w: FeatureGate: %s", ErrUnauthorized, rejected.Message)
	}
	return &snapshot, nil
}

func (c *HTTPClient) CRSScore(ctx context.Context) (*models.CRSScore, error) {
	payload, err := c.do(ctx, "CRSScore", crsScoreQuery, nil, "crsScore", c.tokens())
	if err != nil {
		return nil, err
	}

	var score models.CRSScore
	var rejected authError
	name, err := decodeUnion("CRSScore", payload, map[string]any{"CRSScore": &score, "AuthError": &rejected})
	if err != nil {
		return nil, err
	}
	if name == "AuthError" {
		return nil, fmt.Errorf("%w: CRSScore: %s", ErrUnauthorized, rejected.Message)
	}
	return &score, nil
}
