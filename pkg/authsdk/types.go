package authsdk

// ErrorResponse is the RFC 6749 error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// TokenResponse is returned by POST /v1/oauth2/token for every grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
	Scope        string `json:"scope,omitempty"`
}

// AuthorizeResponse is returned by POST /v1/oauth2/authorize.
type AuthorizeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// IntrospectionResponse follows RFC 7662. An inactive token carries only
// Active=false.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Nbf       int64  `json:"nbf,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Aud       string `json:"aud,omitempty"`
	Iss       string `json:"iss,omitempty"`
	Jti       string `json:"jti,omitempty"`
}

// UserInfoResponse describes the caller of GET /v1/userinfo. UserID and
// Username are empty when the token was issued to a client rather than a
// user.
type UserInfoResponse struct {
	Subject  string `json:"sub"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// CreateClientRequest registers a client. Confidential clients get a
// generated secret, returned once.
type CreateClientRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Confidential bool     `json:"confidential"`
	Scopes       []string `json:"scopes" validate:"dive,required,max=64"`
}

// CreateClientResponse carries the new client's credentials.
type CreateClientResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// UpdateClientScopesRequest replaces the scopes a client may request.
type UpdateClientScopesRequest struct {
	Scopes []string `json:"scopes" validate:"dive,required,max=64"`
}

// ClientInfo describes one registered client.
type ClientInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Scopes    []string `json:"scopes"`
	HasSecret bool     `json:"has_secret"`
	Protected bool     `json:"protected"`
	CreatedAt string   `json:"created_at"` // RFC 3339
}

// ListClientsResponse is returned by GET /v1/admin/clients.
type ListClientsResponse struct {
	Clients []ClientInfo `json:"clients"`
}

// CreateUserRequest adds a resource owner.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// CreateUserResponse identifies the new user.
type CreateUserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ChangePasswordRequest sets a user's password.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// SweepResponse reports what one forced housekeeping pass removed.
type SweepResponse struct {
	ExpiredTokens int `json:"expired_tokens"`
	ExpiredCodes  int `json:"expired_codes"`
}

// HealthResponse is returned by /livez and /readyz. Checks is only set by
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Tokens   int    `json:"live_tokens"`
	Codes    int    `json:"live_codes"`
}
