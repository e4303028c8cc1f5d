package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token.
// Accepts application/x-www-form-urlencoded per RFC 6749.
type TokenHandler struct {
	TokenService *service.TokenService
	Credentials  *service.Credentials
	Issuer       string
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	grantType := r.Form.Get("grant_type")
	switch grantType {
	case "password":
		h.handlePasswordGrant(w, r)
	case "client_credentials":
		h.handleClientCredentialsGrant(w, r)
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r)
	case "refresh_token":
		h.handleRefreshGrant(w, r)
	default:
		authsdk.ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *TokenHandler) handlePasswordGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	clientID, secret := clientCredentials(r)
	if username == "" || password == "" || clientID == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// The client caps what the resource owner can ask for.
	client, err := h.Credentials.AuthenticateClient(ctx, clientID, secret)
	if err != nil {
		writeGrantError(w, r, "password", err)
		return
	}
	requested := r.Form.Get("scope")
	if err := service.PermitScope(client, scope.Parse(requested, h.TokenService.ScopeDelimiter)); err != nil {
		writeGrantError(w, r, "password", err)
		return
	}

	pair, err := h.TokenService.IssueByPassword(ctx, h.Issuer, username,
		service.EncodePassword(password), requested)
	if err != nil {
		writeGrantError(w, r, "password", err)
		return
	}
	writeTokenResponse(w, pair)
}

func (h *TokenHandler) handleClientCredentialsGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, secret := clientCredentials(r)
	if clientID == "" || secret == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	client, err := h.Credentials.AuthenticateClient(ctx, clientID, secret)
	if err != nil {
		writeGrantError(w, r, "client_credentials", err)
		return
	}

	pair, err := h.TokenService.IssueForClient(ctx, h.Issuer, client.ID, r.Form.Get("scope"))
	if err != nil {
		writeGrantError(w, r, "client_credentials", err)
		return
	}
	writeTokenResponse(w, pair)
}

func (h *TokenHandler) handleAuthorizationCodeGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := strings.TrimSpace(r.Form.Get("code"))
	clientID, secret := clientCredentials(r)
	if code == "" || clientID == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	client, err := h.Credentials.AuthenticateClient(ctx, clientID, secret)
	if err != nil {
		writeGrantError(w, r, "authorization_code", err)
		return
	}

	pair, err := h.TokenService.ExchangeCode(ctx, h.Issuer, code, client.ID)
	if err != nil {
		writeGrantError(w, r, "authorization_code", err)
		return
	}
	writeTokenResponse(w, pair)
}

// handleRefreshGrant slides a pair forward. Client credentials are optional
// here, but a pair issued to a client only refreshes for that client once
// it has authenticated (RFC 6749 section 6).
func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refresh := strings.TrimSpace(r.Form.Get("refresh_token"))
	if refresh == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	clientID, secret := clientCredentials(r)
	if clientID != "" {
		client, err := h.Credentials.AuthenticateClient(ctx, clientID, secret)
		if err != nil {
			writeGrantError(w, r, "refresh_token", err)
			return
		}
		clientID = client.ID
	}

	pair, err := h.TokenService.RefreshForClient(ctx, refresh, clientID)
	if err != nil {
		writeGrantError(w, r, "refresh_token", err)
		return
	}
	writeTokenResponse(w, pair)
}

func writeTokenResponse(w http.ResponseWriter, pair *domain.TokenPair) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn),
		Scope:        pair.Scope,
	})
}

// writeGrantError maps service errors onto RFC 6749 section 5.2 responses.
func writeGrantError(w http.ResponseWriter, r *http.Request, grant string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidScope):
		authsdk.ErrInvalidScope.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidGrant),
		errors.Is(err, service.ErrTokenMalformed),
		errors.Is(err, service.ErrTokenUnknown),
		errors.Is(err, service.ErrTokenMismatch),
		errors.Is(err, service.ErrScopeNotGranted),
		errors.Is(err, service.ErrTokenExpired):
		authsdk.ErrInvalidGrant.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("grant failed",
			slog.String("grant_type", grant),
			slog.Any("error", err),
		)
		authsdk.ErrServerError.WriteError(w)
	}
}
