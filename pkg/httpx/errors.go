package httpx

import (
	"fmt"
	"net/http"
)

// OAuth2 error codes per RFC 6749 and RFC 6750.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidGrant         = "invalid_grant"
	ErrorCodeUnauthorizedClient   = "unauthorized_client"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeInvalidScope         = "invalid_scope"
	ErrorCodeServerError          = "server_error"
	ErrorCodeInvalidToken         = "invalid_token"
	ErrorCodeInsufficientScope    = "insufficient_scope"
	ErrorCodeAccessDenied         = "access_denied"
)

// OAuth2Error represents a standard OAuth2 error response per RFC 6749.
type OAuth2Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as the response body with its status code.
func (e *OAuth2Error) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, e)
}

// NewOAuth2Error builds an error with the given status, code and description.
func NewOAuth2Error(status int, code, desc string) *OAuth2Error {
	return &OAuth2Error{StatusCode: status, Code: code, Description: desc}
}
