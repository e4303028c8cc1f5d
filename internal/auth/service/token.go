package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/pkg/clock"
	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// TokenService issues token pairs and tracks every live pair in memory,
// keyed by the jti both tokens share.
//
// A presented token is valid only while its decoded payload is exactly the
// payload stored for that jti. Refreshing a pair rewrites the stored
// payloads, which is what makes the previous strings stale.
type TokenService struct {
	Codec          *jwtx.Codec
	Clock          clock.Clock
	Credentials    *Credentials
	Codes          *AuthorizeService
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	ScopeDelimiter string

	mu      sync.RWMutex
	records map[string]*domain.TokenRecord
}

type tokenKind int

const (
	accessToken tokenKind = iota
	refreshToken
)

func (k tokenKind) String() string {
	if k == refreshToken {
		return "refresh"
	}
	return "access"
}

func (s *TokenService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL <= 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return s.RefreshTTL
}

// IssueByPassword implements the resource owner password grant. password
// arrives base64url encoded.
func (s *TokenService) IssueByPassword(
	ctx context.Context,
	issuer, username, password, requested string,
) (*domain.TokenPair, error) {
	if err := s.Credentials.AuthenticateUser(ctx, username, password); err != nil {
		return nil, err
	}
	return s.issue(ctx, issuer, username, "", scope.Parse(requested, s.ScopeDelimiter))
}

// IssueImplicit issues a pair for an already authenticated user. The user
// must still exist.
func (s *TokenService) IssueImplicit(
	ctx context.Context,
	issuer, username, requested string,
) (*domain.TokenPair, error) {
	return s.issueForUser(ctx, issuer, username, "", scope.Parse(requested, s.ScopeDelimiter))
}

// issueForUser mints a pair for username after checking the user is still
// stored.
func (s *TokenService) issueForUser(
	ctx context.Context,
	issuer, username, audience string,
	granted scope.Set,
) (*domain.TokenPair, error) {
	if err := s.Credentials.LookupUser(ctx, username); err != nil {
		return nil, err
	}
	return s.issue(ctx, issuer, username, audience, granted)
}

// IssueForClient implements the client_credentials grant for a client the
// caller has already authenticated. An empty request grants every scope the
// client is registered for; anything else must stay within them.
func (s *TokenService) IssueForClient(
	ctx context.Context,
	issuer, clientID, requested string,
) (*domain.TokenPair, error) {
	client, err := s.Credentials.LookupClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	allowed := scope.FromSlice(client.Scopes)
	want := scope.Parse(requested, s.ScopeDelimiter)
	switch {
	case want.IsEmpty():
		want = allowed
	case !allowed.IsEmpty() && !want.SubsetOf(allowed):
		slogx.FromContext(ctx).Info("client asked for scope outside its registration",
			slog.String("client_id", clientID),
			slog.String("requested", want.String()),
		)
		return nil, ErrInvalidScope
	}

	return s.issue(ctx, issuer, client.ID, client.ID, want)
}

// ExchangeCode redeems an authorization code issued to clientID and issues
// a pair for the code's user, audience set to the client. The code is spent
// even when its user has been deleted since.
func (s *TokenService) ExchangeCode(
	ctx context.Context,
	issuer, code, clientID string,
) (*domain.TokenPair, error) {
	rec, err := s.Codes.Consume(code, clientID)
	if err != nil {
		slogx.FromContext(ctx).Info("authorization code rejected",
			slogx.Redact("code", code),
			slog.Any("error", err),
		)
		return nil, err
	}
	return s.issueForUser(ctx, issuer, rec.UserID, rec.ClientID, scope.Parse(rec.Scope, s.ScopeDelimiter))
}

// issue mints a pair under a fresh jti and stores the record.
func (s *TokenService) issue(
	ctx context.Context,
	issuer, subject, audience string,
	granted scope.Set,
) (*domain.TokenPair, error) {
	now := s.now().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		s.records = make(map[string]*domain.TokenRecord)
	}

	jti := jwtx.NewJTI()
	for {
		if _, taken := s.records[jti]; !taken {
			break
		}
		jti = jwtx.NewJTI()
	}

	rec := &domain.TokenRecord{
		ID:      jti,
		Access:  jwtx.NewPayload(issuer, subject, audience, jti, now, s.accessTTL()),
		Refresh: jwtx.NewPayload(issuer, subject, audience, jti, now, s.refreshTTL()),
		Scope:   granted,
	}
	if err := s.encodeRecord(rec); err != nil {
		slogx.FromContext(ctx).Error("failed to sign token pair", slog.Any("error", err))
		return nil, err
	}
	s.records[jti] = rec

	slogx.FromContext(ctx).Info("token pair issued",
		slog.String("jti", jti),
		slog.String("sub", subject),
		slog.String("scope", granted.String()),
	)
	return s.pair(rec), nil
}

// encodeRecord signs both payloads of rec and refreshes ExpiresAtLeast.
// rec is untouched on error.
func (s *TokenService) encodeRecord(rec *domain.TokenRecord) error {
	access, err := s.Codec.Encode(rec.Access)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCrypt, err)
	}
	refresh, err := s.Codec.Encode(rec.Refresh)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCrypt, err)
	}
	rec.AccessToken = access
	rec.RefreshToken = refresh
	rec.ExpiresAtLeast = rec.Refresh.Expiry()
	return nil
}

func (s *TokenService) pair(rec *domain.TokenRecord) *domain.TokenPair {
	return &domain.TokenPair{
		ID:           rec.ID,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL() / time.Second),
		Scope:        rec.Scope.Serialize(s.ScopeDelimiter),
	}
}

// validateLocked runs the checks every presented token goes through, in
// order: decode, lookup by jti, exact payload match, scope, expiry. The
// caller must hold s.mu.
func (s *TokenService) validateLocked(
	encoded, requested string,
	kind tokenKind,
	now time.Time,
) (*domain.TokenRecord, error) {
	p, err := s.Codec.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	rec, ok := s.records[p.ID]
	if !ok {
		return nil, ErrTokenUnknown
	}

	want := rec.Access
	if kind == refreshToken {
		want = rec.Refresh
	}
	if p != want {
		return nil, ErrTokenMismatch
	}

	if !rec.Scope.ContainsAll(requested, s.ScopeDelimiter) {
		return nil, ErrScopeNotGranted
	}

	if p.ExpiredAt(now) {
		return nil, ErrTokenExpired
	}
	return rec, nil
}

func (s *TokenService) logRejected(ctx context.Context, encoded string, kind tokenKind, err error) {
	l := slogx.FromContext(ctx)
	attrs := []any{
		slog.String("token_fp", cryptox.FingerprintToken(encoded)),
		slog.String("kind", kind.String()),
		slog.Any("error", err),
	}
	if errors.Is(err, jwtx.ErrInvalidSignature) || errors.Is(err, jwtx.ErrMalformed) {
		l.Error("token failed verification", attrs...)
		return
	}
	l.Debug("token rejected", attrs...)
}

// Validate checks an access token and, when requested is not empty, that
// it was granted every scope in requested. It returns a snapshot of the
// record on success.
func (s *TokenService) Validate(ctx context.Context, encoded, requested string) (domain.TokenRecord, error) {
	return s.validate(ctx, encoded, requested, accessToken)
}

func (s *TokenService) validate(ctx context.Context, encoded, requested string, kind tokenKind) (domain.TokenRecord, error) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.validateLocked(encoded, requested, kind, now)
	if err != nil {
		s.logRejected(ctx, encoded, kind, err)
		return domain.TokenRecord{}, err
	}
	return *rec, nil
}

// IsValid reports whether encoded is a live access token carrying scope.
func (s *TokenService) IsValid(ctx context.Context, encoded, requested string) bool {
	_, err := s.validate(ctx, encoded, requested, accessToken)
	return err == nil
}

// IsValidRefresh reports whether encoded is a live refresh token.
func (s *TokenService) IsValidRefresh(ctx context.Context, encoded string) bool {
	_, err := s.validate(ctx, encoded, "", refreshToken)
	return err == nil
}

// GetToken returns a copy of the record behind a valid access token.
func (s *TokenService) GetToken(ctx context.Context, encoded string) (domain.TokenRecord, bool) {
	rec, err := s.validate(ctx, encoded, "", accessToken)
	return rec, err == nil
}

// Refresh validates a refresh token and slides both tokens of its pair
// forward from now. The jti is kept; the previous strings stop validating
// once any claim has moved.
func (s *TokenService) Refresh(ctx context.Context, encoded string) (*domain.TokenPair, error) {
	return s.refresh(ctx, encoded, nil)
}

// RefreshForClient is Refresh for the token endpoint. A pair issued to a
// client (non-empty audience) only slides forward for that client; clientID
// is empty when the caller presented no client credentials.
func (s *TokenService) RefreshForClient(ctx context.Context, encoded, clientID string) (*domain.TokenPair, error) {
	return s.refresh(ctx, encoded, func(rec *domain.TokenRecord) error {
		if aud := rec.Refresh.Audience; aud != "" && aud != clientID {
			slogx.FromContext(ctx).Info("refresh by foreign client",
				slog.String("jti", rec.ID),
				slog.String("aud", aud),
				slog.String("client_id", clientID),
			)
			return ErrInvalidGrant
		}
		return nil
	})
}

func (s *TokenService) refresh(
	ctx context.Context,
	encoded string,
	check func(*domain.TokenRecord) error,
) (*domain.TokenPair, error) {
	now := s.now().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.validateLocked(encoded, "", refreshToken, now)
	if err != nil {
		s.logRejected(ctx, encoded, refreshToken, err)
		return nil, err
	}
	if check != nil {
		if err := check(rec); err != nil {
			return nil, err
		}
	}

	next := *rec
	next.Access.Renew(now, s.accessTTL())
	next.Refresh.Renew(now, s.refreshTTL())
	if err := s.encodeRecord(&next); err != nil {
		slogx.FromContext(ctx).Error("failed to sign refreshed pair", slog.Any("error", err))
		return nil, err
	}
	*rec = next

	slogx.FromContext(ctx).Info("token pair refreshed", slog.String("jti", rec.ID))
	return s.pair(rec), nil
}

// ClearExpiredTokens drops every pair whose refresh token has expired and
// returns how many went.
func (s *TokenService) ClearExpiredTokens() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for jti, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, jti)
			removed++
		}
	}
	return removed
}

// ClearAllTokens empties the registry and returns how many pairs it held.
func (s *TokenService) ClearAllTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	clear(s.records)
	return n
}

// Len returns the number of live pairs.
func (s *TokenService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
