/*
Package authsdk is a client for the tabkeeper token service.

It is organised around two types:

  - SDKClient: unauthenticated calls (grants, code issuance, health checks)
    and the constructors for Sessions.
  - Session: calls made with a bearer access token. A Session refreshes its
    token pair through the refresh_token grant shortly before the access
    token expires.

Typical use:

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.AuthenticateWithPassword(ctx, clientID, "", "alice", "secret", []string{"profile:read"})
	if err != nil {
		return err
	}

	info, err := session.GetUserInfo(ctx)

Authorization codes are a two step flow. The resource owner's credentials
buy a short-lived code, which the client then redeems for a pair:

	session, err := client.AuthorizeAndExchange(ctx, clientID, clientSecret, "alice", "secret", scopes)

# Scopes

Session methods declare the scope the server will demand. When
SDKClient.CheckScopes is true (the default) a Session refuses to send a
request it already knows will be rejected.

# Errors

Failed calls return *OAuth2Error carrying the HTTP status and the RFC 6749
error code, so callers can branch with errors.As.

Sessions are safe for concurrent use.
*/
package authsdk
