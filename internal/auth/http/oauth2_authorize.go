package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// AuthorizeHandler serves POST /v1/oauth2/authorize. It authenticates the
// resource owner and returns an authorization code bound to the client.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
}

func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !parseForm(w, r) {
		return
	}

	clientID := strings.TrimSpace(r.Form.Get("client_id"))
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if clientID == "" || username == "" || password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	code, err := h.AuthorizeService.Authorize(ctx, username,
		service.EncodePassword(password), clientID, r.Form.Get("scope"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			authsdk.ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrAccessDenied.WriteError(w)
		case errors.Is(err, service.ErrInvalidScope):
			authsdk.ErrInvalidScope.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("authorize failed", "error", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthorizeResponse{
		Code:      code,
		ExpiresIn: int(h.AuthorizeService.TTL().Seconds()),
	})
}
