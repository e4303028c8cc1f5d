package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants for standard OAuth2/JWT flows.
// These can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TypeJWT is the token type tag we put in every header.
const TypeJWT = "JWT"

// Header is the first segment of a token. It is a plain value so once built
// it can't be changed underneath a token.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// NewHeader returns the header for the given algorithm.
func NewHeader(alg string) Header {
	return Header{Algorithm: alg, Type: TypeJWT}
}

// Payload is the signed claim set. Instants are NumericDate seconds.
//
// Payload is comparable: two payloads are the same token iff p == q. The
// token registry relies on that to spot a decoded payload that differs from
// the one it issued.
type Payload struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Audience  string `json:"aud,omitempty"`
	ExpiresAt int64  `json:"exp"`
	NotBefore int64  `json:"nbf"`
	IssuedAt  int64  `json:"iat"`
	ID        string `json:"jti"`
}

// NewPayload builds a payload valid from now for ttl.
func NewPayload(issuer, subject, audience, jti string, now time.Time, ttl time.Duration) Payload {
	p := Payload{
		Issuer:   issuer,
		Subject:  subject,
		Audience: audience,
		ID:       jti,
	}
	p.Renew(now, ttl)
	return p
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// Renew moves iat and nbf to now and exp to now+ttl.
func (p *Payload) Renew(now time.Time, ttl time.Duration) {
	p.IssuedAt = now.Unix()
	p.NotBefore = now.Unix()
	p.ExpiresAt = now.Add(ttl).Unix()
}

// Expiry returns exp as a time.
func (p Payload) Expiry() time.Time { return time.Unix(p.ExpiresAt, 0).UTC() }

// Issued returns iat as a time.
func (p Payload) Issued() time.Time { return time.Unix(p.IssuedAt, 0).UTC() }

// ExpiredAt reports whether the payload is expired at now. A payload whose
// exp equals now is already expired.
func (p Payload) ExpiredAt(now time.Time) bool {
	return !p.Expiry().After(now)
}

// The methods below satisfy jwt.Claims so the parser can fill a Payload
// directly.

func (p Payload) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(p.Expiry()), nil
}

func (p Payload) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(p.Issued()), nil
}

func (p Payload) GetNotBefore() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(p.NotBefore, 0)), nil
}

func (p Payload) GetIssuer() (string, error)  { return p.Issuer, nil }
func (p Payload) GetSubject() (string, error) { return p.Subject, nil }

func (p Payload) GetAudience() (jwt.ClaimStrings, error) {
	if p.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{p.Audience}, nil
}
