package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/pkg/clock"
	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// DefaultCodeTTL is how long an authorization code stays redeemable.
const DefaultCodeTTL = 5 * time.Minute

// AuthorizeService issues short-lived authorization codes and keeps them in
// memory until they are redeemed or swept.
//
// A code is the keyed digest of who it was issued to, for which client and
// scope, and when it expires. Two identical requests within the same second
// therefore get the same code, and the later one replaces the earlier
// record.
type AuthorizeService struct {
	Codec          *jwtx.Codec
	Clock          clock.Clock
	Credentials    *Credentials
	CodeTTL        time.Duration
	ScopeDelimiter string

	mu    sync.RWMutex
	codes map[string]domain.AuthorizationCode
}

func (s *AuthorizeService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

// TTL is how long a newly issued code stays valid.
func (s *AuthorizeService) TTL() time.Duration {
	if s.CodeTTL <= 0 {
		return DefaultCodeTTL
	}
	return s.CodeTTL
}

// Authorize authenticates the resource owner, checks the client may ask
// for scope, and issues a code bound to both.
func (s *AuthorizeService) Authorize(
	ctx context.Context,
	username, encodedPassword, clientID, requested string,
) (string, error) {
	client, err := s.Credentials.LookupClient(ctx, clientID)
	if err != nil {
		return "", err
	}

	if err := s.Credentials.AuthenticateUser(ctx, username, encodedPassword); err != nil {
		return "", err
	}

	want := scope.Parse(requested, s.ScopeDelimiter)
	if err := PermitScope(client, want); err != nil {
		return "", err
	}

	return s.IssueCode(ctx, username, client.ID, want.Serialize(s.ScopeDelimiter))
}

// codeMessage is the signed input of a code. Absent scope is spelled
// "null" so it can't collide with a scope literally named "".
func codeMessage(userID, clientID, sc string, expires time.Time) string {
	if sc == "" {
		sc = "null"
	}
	return strings.Join([]string{userID, clientID, sc, expires.UTC().Format(time.RFC3339)}, "|")
}

// IssueCode mints and stores a code for userID and clientID. An empty
// scope means none was requested.
func (s *AuthorizeService) IssueCode(ctx context.Context, userID, clientID, sc string) (string, error) {
	expires := s.now().Truncate(time.Second).Add(s.TTL())

	code, err := s.Codec.Sign(codeMessage(userID, clientID, sc, expires))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign authorization code", slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", ErrCrypt, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codes == nil {
		s.codes = make(map[string]domain.AuthorizationCode)
	}
	s.codes[code] = domain.AuthorizationCode{
		Code:      code,
		UserID:    userID,
		ClientID:  clientID,
		Scope:     sc,
		ExpiresAt: expires,
	}

	slogx.FromContext(ctx).Debug("authorization code issued",
		slogx.Redact("code", code),
		slog.String("client_id", clientID),
		slog.Time("expires_at", expires),
	)
	return code, nil
}

// IsValid reports whether code is known and not yet expired.
func (s *AuthorizeService) IsValid(code string) bool {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.codes[code]
	return ok && !rec.Expired(now)
}

// GetCodeInfo returns the record behind code, expired or not.
func (s *AuthorizeService) GetCodeInfo(code string) (domain.AuthorizationCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.codes[code]
	return rec, ok
}

// ClearCode forgets code. It reports whether anything was removed.
func (s *AuthorizeService) ClearCode(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.codes[code]
	delete(s.codes, code)
	return ok
}

// Consume redeems code for clientID. Lookup, expiry check, client binding
// and removal happen under one lock so a code can be redeemed at most once.
// A code presented by the wrong client is left in place.
func (s *AuthorizeService) Consume(code, clientID string) (domain.AuthorizationCode, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[code]
	if !ok {
		return domain.AuthorizationCode{}, fmt.Errorf("%w: unknown code", ErrInvalidGrant)
	}
	if rec.Expired(now) {
		delete(s.codes, code)
		return domain.AuthorizationCode{}, fmt.Errorf("%w: code expired", ErrInvalidGrant)
	}
	if rec.ClientID != clientID {
		return domain.AuthorizationCode{}, fmt.Errorf("%w: code issued to another client", ErrInvalidGrant)
	}

	delete(s.codes, code)
	return rec, nil
}

// ClearExpiredCodes removes every expired code and returns how many went.
func (s *AuthorizeService) ClearExpiredCodes() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for code, rec := range s.codes {
		if rec.Expired(now) {
			delete(s.codes, code)
			removed++
		}
	}
	return removed
}

// ClearAllCodes empties the registry and returns how many codes it held.
func (s *AuthorizeService) ClearAllCodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.codes)
	clear(s.codes)
	return n
}

// Len returns the number of codes currently held.
func (s *AuthorizeService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}
