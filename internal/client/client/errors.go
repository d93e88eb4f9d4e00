package client

import "errors"

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrBadResponse   = errors.New("unexpected server response")
	ErrConsentFailed = errors.New("consent not saved")
)
