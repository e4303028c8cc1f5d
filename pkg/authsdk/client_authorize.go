package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Authorize checks the resource owner's credentials and asks for a code
// bound to clientID.
func (c *SDKClient) Authorize(
	ctx context.Context,
	clientID, username, password string,
	scopes []string,
) (*AuthorizeResponse, error) {
	data := url.Values{
		"client_id": {clientID},
		"username":  {username},
		"password":  {password},
	}
	setScope(data, scopes)

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/authorize",
		strings.NewReader(data.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var authResp AuthorizeResponse
	if err := decodeJSON(resp, &authResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// AuthorizeAndExchange runs the whole authorization code flow and returns
// a session for the resource owner.
func (c *SDKClient) AuthorizeAndExchange(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	scopes []string,
) (*Session, error) {
	authResp, err := c.Authorize(ctx, clientID, username, password, scopes)
	if err != nil {
		return nil, err
	}

	tokenResp, err := c.AuthorizationCodeGrant(ctx, clientID, clientSecret, authResp.Code)
	if err != nil {
		return nil, err
	}
	return newClientSession(c, clientID, clientSecret, tokenResp), nil
}
