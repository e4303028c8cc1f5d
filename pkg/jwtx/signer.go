package jwtx

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Supported HMAC signing algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmHS384 = "HS384"
	AlgorithmHS512 = "HS512"
)

// Algorithms lists every algorithm Encode and Decode accept.
var Algorithms = []string{AlgorithmHS256, AlgorithmHS384, AlgorithmHS512}

// hmacMethod resolves an algorithm name to its keyed-hash signing method.
func hmacMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	return method, nil
}

// Encode signs header and payload with secret and returns the compact
// token "<header>.<payload>.<signature>". The same inputs always produce
// the same string.
func Encode(h Header, p Payload, secret []byte, alg string) (string, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: empty secret", ErrSigning)
	}
	if h.Algorithm != "" && h.Algorithm != method.Alg() {
		return "", fmt.Errorf("%w: header alg %q does not match %q", ErrSigning, h.Algorithm, method.Alg())
	}
	if h.Type == "" {
		h.Type = TypeJWT
	}

	t := jwt.NewWithClaims(method, p)
	t.Header = map[string]any{
		"alg": method.Alg(),
		"typ": h.Type,
	}

	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}

// Sign runs message through the keyed digest selected by alg and returns
// the base64url MAC. It is the same primitive Encode uses for the third
// segment, exposed on its own for opaque deterministic values such as
// authorization codes.
func Sign(message string, secret []byte, alg string) (string, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: empty secret", ErrSigning)
	}

	sig, err := method.Sign(message, secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return base64.RawURLEncoding.EncodeToString(sig), nil
}

// Codec binds a secret and algorithm so callers don't pass them around.
type Codec struct {
	method *jwt.SigningMethodHMAC
	secret []byte
}

// NewCodec validates the configuration once. An unsupported algorithm or an
// empty secret is a configuration fault and is reported here, not on every
// signature.
func NewCodec(secret []byte, alg string) (*Codec, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, errors.New("jwtx: secret is required")
	}
	return &Codec{method: method, secret: secret}, nil
}

// Algorithm returns the configured algorithm name.
func (c *Codec) Algorithm() string { return c.method.Alg() }

// Header returns the header every token from this codec carries.
func (c *Codec) Header() Header { return NewHeader(c.method.Alg()) }

// Encode signs p under the codec's header.
func (c *Codec) Encode(p Payload) (string, error) {
	return Encode(c.Header(), p, c.secret, c.method.Alg())
}

// Decode verifies token against the codec's secret.
func (c *Codec) Decode(token string) (Payload, error) {
	return Decode(token, c.secret)
}

// Sign computes the codec's keyed digest of message.
func (c *Codec) Sign(message string) (string, error) {
	return Sign(message, c.secret, c.method.Alg())
}
