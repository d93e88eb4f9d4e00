// Package client contains the backend API contract used by the session core.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the server
//     operations the core depends on: login/register, token verification and
//     refresh, logout, role assignment, consent status and consent saves,
//     the feature-gate snapshot and the CRS score.
//  2. A GraphQL-over-HTTP implementation (see HTTPClient) that attaches the
//     bearer token, device id and a request id to every call, applies a
//     per-request timeout and maps failures to sentinel errors.
//
// # Results
//
// Operations whose server payload is a union (success or a typed error) return
// a sealed result interface (VerifyResult, RefreshResult, AuthResult) that
// callers match exhaustively with a type switch. The error return is reserved
// for transport and protocol faults.
//
// # Error Handling
//
// Failures are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable (network, timeout, 5xx), ErrUnauthorized (the
// server rejected the credentials) and ErrBadResponse (unexpected payload).
package client
