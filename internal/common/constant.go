// Package common contains shared constants and helpers used across the
// jobcoach client packages.
package common

// Header names sent on every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	DeviceIDHeaderName      = "X-Device-ID"
	BearerPrefix            = "Bearer "
)

// Metadata keys used in the local key/value store.
const (
	MetadataDeviceID     = "device_id"
	MetadataSessionState = "session_state"
)

// Fixed CredentialVault keys for the token pair.
const (
	VaultAccessTokenKey  = "access_token"
	VaultRefreshTokenKey = "refresh_token"
)
