package domain

import (
	"time"

	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
)

// TokenTypeBearer is the only token type we hand out.
const TokenTypeBearer = "Bearer"

// TokenPair represents what the token endpoint returns: a short-lived
// access token and a longer lived refresh token sharing one jti.
type TokenPair struct {
	ID           string `json:"-"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
	Scope        string `json:"scope,omitempty"`
}

// TokenRecord is the registry entry for one issued pair, keyed by jti.
//
// The payloads are the reference copies: a presented token is only valid
// while its decoded payload is exactly equal to the stored one.
type TokenRecord struct {
	ID             string
	Access         jwtx.Payload
	AccessToken    string
	Refresh        jwtx.Payload
	RefreshToken   string
	ExpiresAtLeast time.Time
	Scope          scope.Set
}

// Expired reports whether the whole pair is past its refresh expiry.
func (r TokenRecord) Expired(now time.Time) bool {
	return !r.ExpiresAtLeast.After(now)
}
