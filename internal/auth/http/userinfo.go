package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP describes the caller behind the bearer token. Tokens issued to
// a client carry no user, so only the subject and scope come back.
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	resp := authsdk.UserInfoResponse{
		Subject: p.Subject,
		Scope:   p.Scope.String(),
	}

	user, err := h.UserService.GetUserByUsername(ctx, p.Subject)
	switch {
	case err == nil:
		resp.UserID = user.ID
		resp.Username = user.Username
	case errors.Is(err, service.ErrUserNotFound):
	default:
		slogx.FromContext(ctx).Warn("failed to load user", "sub", p.Subject, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
