package http

import (
	"net/http"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
)

// IntrospectHandler serves POST /v1/oauth2/introspect following RFC 7662.
// An optional scope field asks whether the token also carries that scope.
type IntrospectHandler struct {
	TokenService *service.TokenService
}

func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// Only access tokens can be introspected.
	if hint := r.Form.Get("token_type_hint"); hint != "" && hint != "access_token" {
		writeInactiveResponse(w)
		return
	}

	// The reason a token is inactive is never revealed; Validate logs it.
	rec, err := h.TokenService.Validate(r.Context(), token, r.Form.Get("scope"))
	if err != nil {
		writeInactiveResponse(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, introspection(rec))
}

func introspection(rec domain.TokenRecord) authsdk.IntrospectionResponse {
	p := rec.Access
	resp := authsdk.IntrospectionResponse{
		Active:    true,
		Scope:     rec.Scope.String(),
		ClientID:  p.Audience,
		TokenType: domain.TokenTypeBearer,
		Exp:       p.ExpiresAt,
		Iat:       p.IssuedAt,
		Nbf:       p.NotBefore,
		Sub:       p.Subject,
		Aud:       p.Audience,
		Iss:       p.Issuer,
		Jti:       p.ID,
	}
	// Client credential tokens name the client as their own subject.
	if p.Subject != p.Audience {
		resp.Username = p.Subject
	}
	return resp
}

// writeInactiveResponse returns the minimal RFC 7662 response.
func writeInactiveResponse(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.IntrospectionResponse{Active: false})
}
