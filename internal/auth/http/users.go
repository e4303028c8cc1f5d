package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// UsersHandler handles the user management endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles POST /v1/admin/users.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.UserService.CreateUser(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateUserResponse{
			UserID:   user.ID,
			Username: user.Username,
		})
	case errors.Is(err, service.ErrUsernameTaken):
		authsdk.ErrConflict.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("failed to create user", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// HandleChangePassword handles PUT /v1/admin/users/{id}/password.
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req authsdk.ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	h.writeNoContent(w, r, h.UserService.ChangePassword(r.Context(), userID, req.Password))
}

// HandleDelete handles DELETE /v1/admin/users/{id}.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	h.writeNoContent(w, r, h.UserService.DeleteUser(r.Context(), userID))
}

func (h *UsersHandler) writeNoContent(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("user update failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
