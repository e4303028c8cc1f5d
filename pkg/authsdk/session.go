package authsdk

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
)

// refreshSkew is how long before the access token's expiry a Session
// refreshes it.
const refreshSkew = 30 * time.Second

// Session holds a token pair and refreshes it as needed. All methods are
// safe for concurrent use.
type Session struct {
	client *SDKClient

	// Set when the pair was issued to a client, which must then
	// authenticate to refresh it.
	clientID     string
	clientSecret string

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	scopes       scope.Set
}

func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	s := &Session{client: client}
	s.apply(tokenResp)
	return s
}

// newClientSession is newSession for a pair issued to clientID.
func newClientSession(client *SDKClient, clientID, clientSecret string, tokenResp *TokenResponse) *Session {
	s := newSession(client, tokenResp)
	s.clientID = clientID
	s.clientSecret = clientSecret
	return s
}

// refreshLocked runs the refresh_token grant. The caller must hold s.mu.
func (s *Session) refreshLocked(ctx context.Context) error {
	tokenResp, err := s.client.RefreshGrantAsClient(ctx, s.clientID, s.clientSecret, s.refreshToken)
	if err != nil {
		return err
	}
	s.apply(tokenResp)
	return nil
}

// apply stores a token response. The caller must hold s.mu or own s.
func (s *Session) apply(tokenResp *TokenResponse) {
	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshSkew)
	s.scopes = scope.Parse(tokenResp.Scope, scope.DefaultDelimiter)
}

// getValidToken returns the access token, refreshing the pair first when
// it is about to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	if err := s.refreshLocked(ctx); err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return s.accessToken, nil
}

// Refresh forces a refresh_token grant now.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

// AccessToken returns the current access token without checking expiry.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Scopes returns the granted scopes, sorted.
func (s *Session) Scopes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes.Slice()
}

// HasScope reports whether sc was granted.
func (s *Session) HasScope(sc string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes.Contains(sc)
}

// HasAllScopes reports whether every one of scopes was granted.
func (s *Session) HasAllScopes(scopes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scope.FromSlice(scopes).SubsetOf(s.scopes)
}

func (s *Session) checkScopes(required ...string) error {
	if !s.client.CheckScopes || len(required) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, sc := range required {
		if !s.scopes.Contains(sc) {
			missing = append(missing, sc)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required scope(s): %s", strings.Join(missing, ", "))
	}
	return nil
}
