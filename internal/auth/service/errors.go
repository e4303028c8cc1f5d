package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidScope       = errors.New("invalid_scope")
	ErrInvalidGrant       = errors.New("invalid_grant")

	// ErrCrypt means a token or code could not be signed. It points at a
	// configuration fault rather than a bad request.
	ErrCrypt = errors.New("crypt_failure")
)

// Token validation failures, one per step. Callers asking a yes/no question
// only ever see false; the distinction is for logs and tests.
var (
	ErrTokenMalformed  = errors.New("token_malformed")
	ErrTokenUnknown    = errors.New("token_unknown")
	ErrTokenMismatch   = errors.New("token_mismatch")
	ErrScopeNotGranted = errors.New("scope_not_granted")
	ErrTokenExpired    = errors.New("token_expired")
)
