package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSigning              = errors.New("jwtx: signing failed")
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported algorithm")
	ErrMalformed            = errors.New("jwtx: malformed token")
	ErrInvalidSignature     = errors.New("jwtx: invalid signature")
)

// Decode verifies token with secret and returns its payload.
//
// The token must have exactly three segments, and the signature is
// recomputed with the HMAC algorithm named in its own header. The payload is
// only returned when the signature matches. Decode does not look at exp,
// nbf or iat; expiry is the caller's decision against its own clock.
func Decode(token string, secret []byte) (Payload, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(Algorithms),
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	)

	var p Payload
	_, err := parser.ParseWithClaims(token, &p, func(t *jwt.Token) (any, error) {
		// WithValidMethods already limits the names; this pins the family.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, t.Header["alg"])
		}
		if len(secret) == 0 {
			return nil, errors.New("jwtx: empty secret")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Payload{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return p, nil
}
