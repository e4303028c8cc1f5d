package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to a tabkeeper service. It makes unauthenticated calls
// and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckScopes makes a Session refuse requests its granted scope can't
	// satisfy instead of sending them. Turn it off in tests that exercise
	// the server side checks.
	CheckScopes bool
}

// NewSDKClient creates a client with scope checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckScopes: true,
	}
}

// AuthenticateWithPassword creates a session with the resource owner
// password grant.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	scopes []string,
) (*Session, error) {
	tokenResp, err := c.PasswordGrant(ctx, clientID, clientSecret, username, password, scopes)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// AuthenticateWithClientCredentials creates a session for a confidential
// client acting as itself.
func (c *SDKClient) AuthenticateWithClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*Session, error) {
	tokenResp, err := c.ClientCredentialsGrant(ctx, clientID, clientSecret, scopes)
	if err != nil {
		return nil, err
	}
	return newClientSession(c, clientID, clientSecret, tokenResp), nil
}

// AuthenticateWithRefreshToken creates a session from a refresh token
// obtained earlier.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tokenResp, err := c.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// NewSessionFromTokens wraps tokens obtained elsewhere. The session still
// refreshes them when the access token runs out.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken, scope string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		Scope:        scope,
	})
}
