package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// ClientsHandler handles the client management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleCreate handles POST /v1/admin/clients. The secret of a
// confidential client is only ever returned here.
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.CreateClientRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	clientID, secret, err := h.ClientService.CreateClient(ctx,
		strings.TrimSpace(req.Name), req.Confidential, req.Scopes)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to create client", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateClientResponse{
		ClientID:     clientID,
		ClientSecret: secret,
	})
}

// HandleList handles GET /v1/admin/clients.
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list clients", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	infos := make([]authsdk.ClientInfo, 0, len(clients))
	for _, c := range clients {
		scopes := c.Scopes
		if scopes == nil {
			scopes = []string{}
		}
		infos = append(infos, authsdk.ClientInfo{
			ID:        c.ID,
			Name:      c.Name,
			Scopes:    scopes,
			HasSecret: c.Confidential(),
			Protected: c.Protected,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ListClientsResponse{Clients: infos})
}

// HandleUpdateScopes handles PUT /v1/admin/clients/{id}/scopes.
func (h *ClientsHandler) HandleUpdateScopes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req authsdk.UpdateClientScopesRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	err := h.ClientService.UpdateScopes(ctx, clientID, req.Scopes)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrClientNotFound):
		authsdk.ErrNotFound.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("failed to update client scopes", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// HandleDelete handles DELETE /v1/admin/clients/{id}.
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.ClientService.DeleteClient(ctx, clientID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrClientNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrClientProtected):
		httpx.NewOAuth2Error(http.StatusForbidden, httpx.ErrorCodeAccessDenied,
			"protected clients cannot be deleted").WriteError(w)
	default:
		slogx.FromContext(ctx).Error("failed to delete client", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
