package domain

import "time"

// AuthorizationCode is a short-lived, single-use grant a client swaps for
// a token pair.
type AuthorizationCode struct {
	Code      string
	UserID    string
	ClientID  string
	Scope     string // raw requested scope, empty when none was asked for
	ExpiresAt time.Time
}

// Expired reports whether the code is no longer redeemable at now.
func (c AuthorizationCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
