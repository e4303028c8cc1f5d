package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
)

// OAuth2Error is the error both the server writes and the SDK returns.
type OAuth2Error = httpx.OAuth2Error

// Predefined errors written by the service handlers.
var (
	ErrInvalidRequest = httpx.NewOAuth2Error(
		http.StatusBadRequest,
		httpx.ErrorCodeInvalidRequest,
		"the request is missing a required parameter or is malformed",
	)
	ErrInvalidContentType = httpx.NewOAuth2Error(
		http.StatusUnsupportedMediaType,
		httpx.ErrorCodeInvalidRequest,
		"content type must be application/x-www-form-urlencoded",
	)
	ErrInvalidFormBody = httpx.NewOAuth2Error(
		http.StatusBadRequest,
		httpx.ErrorCodeInvalidRequest,
		"the form body could not be parsed",
	)
	ErrInvalidJSONBody = httpx.NewOAuth2Error(
		http.StatusBadRequest,
		httpx.ErrorCodeInvalidRequest,
		"the request body must be valid JSON",
	)
	ErrInvalidClient = httpx.NewOAuth2Error(
		http.StatusUnauthorized,
		httpx.ErrorCodeInvalidClient,
		"client authentication failed",
	)
	ErrInvalidGrant = httpx.NewOAuth2Error(
		http.StatusBadRequest,
		httpx.ErrorCodeInvalidGrant,
		"the grant is invalid, expired or was issued to another client",
	)
	ErrInvalidScope = httpx.NewOAuth2Error(
		http.StatusBadRequest,
		httpx.ErrorCodeInvalidScope,
		"the requested scope exceeds what the client may request",
	)
	ErrUnsupportedGrantType = httpx.NewOAuth2Error(
		http.StatusBadRequest,
		httpx.ErrorCodeUnsupportedGrantType,
		"the grant type is not supported",
	)
	ErrAccessDenied = httpx.NewOAuth2Error(
		http.StatusUnauthorized,
		httpx.ErrorCodeAccessDenied,
		"the resource owner credentials are invalid",
	)
	ErrNotFound = httpx.NewOAuth2Error(
		http.StatusNotFound,
		"not_found",
		"the requested resource does not exist",
	)
	ErrConflict = httpx.NewOAuth2Error(
		http.StatusConflict,
		"conflict",
		"the resource already exists or cannot be changed",
	)
	ErrServerError = httpx.NewOAuth2Error(
		http.StatusInternalServerError,
		httpx.ErrorCodeServerError,
		"the server encountered an unexpected condition",
	)
)

// parseErrorResponse turns a non-2xx response into *OAuth2Error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return httpx.NewOAuth2Error(resp.StatusCode, errResp.Error, errResp.ErrorDescription)
	}

	return httpx.NewOAuth2Error(
		resp.StatusCode,
		httpx.ErrorCodeServerError,
		fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	)
}
