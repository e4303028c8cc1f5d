package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// PasswordGrant exchanges resource owner credentials for a token pair.
// The requested scope must lie within the client's registration. Public
// clients pass an empty secret.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"client_id":  {clientID},
		"username":   {username},
		"password":   {password},
	}
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}
	setScope(data, scopes)
	return c.requestToken(ctx, data)
}

// ClientCredentialsGrant requests a pair for a confidential client acting
// on its own behalf. An empty scope list asks for everything the client is
// registered for.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	setScope(data, scopes)
	return c.requestToken(ctx, data)
}

// AuthorizationCodeGrant redeems a code issued to clientID. Public clients
// pass an empty secret.
func (c *SDKClient) AuthorizationCodeGrant(
	ctx context.Context,
	clientID, clientSecret, code string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"authorization_code"},
		"client_id":  {clientID},
		"code":       {code},
	}
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}
	return c.requestToken(ctx, data)
}

// RefreshGrant slides a pair forward. The previous tokens stop working.
// Pairs issued to a client need RefreshGrantAsClient instead.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.RefreshGrantAsClient(ctx, "", "", refreshToken)
}

// RefreshGrantAsClient is RefreshGrant with client authentication. An
// empty clientID sends no client credentials.
func (c *SDKClient) RefreshGrantAsClient(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	if clientID != "" {
		data.Set("client_id", clientID)
	}
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}
	return c.requestToken(ctx, data)
}

func setScope(data url.Values, scopes []string) {
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}
}

func (c *SDKClient) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/token",
		strings.NewReader(data.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}
