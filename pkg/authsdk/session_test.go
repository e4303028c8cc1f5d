package authsdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestParseErrorResponse(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadRequest}
	err := parseErrorResponse(resp, []byte(`{"error":"invalid_grant","error_description":"code expired"}`))

	var oerr *OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusBadRequest, oerr.StatusCode)
	require.Equal(t, httpx.ErrorCodeInvalidGrant, oerr.Code)
	require.Equal(t, "code expired", oerr.Description)

	err = parseErrorResponse(&http.Response{StatusCode: http.StatusBadGateway}, []byte("<html>"))
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusBadGateway, oerr.StatusCode)
	require.Equal(t, httpx.ErrorCodeServerError, oerr.Code)

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}

func TestSessionScopes(t *testing.T) {
	c := NewSDKClient("http://127.0.0.1:0")
	s := c.NewSessionFromTokens("a", "r", "profile:read Admin:Read", 900)

	require.Equal(t, []string{"admin:read", "profile:read"}, s.Scopes())
	require.True(t, s.HasScope("admin:read"))
	require.False(t, s.HasScope("admin:write"))
	require.True(t, s.HasAllScopes("admin:read", "profile:read"))
	require.False(t, s.HasAllScopes("admin:read", "admin:write"))

	// Refused locally before any request is made.
	_, err := s.Sweep(context.Background())
	require.ErrorContains(t, err, "admin:write")

	c.CheckScopes = false
	require.NoError(t, s.checkScopes("admin:write"))
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			require.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
			refreshes.Add(1)
			httpx.WriteJSON(w, http.StatusOK, TokenResponse{
				AccessToken:  "access-2",
				RefreshToken: "refresh-2",
				TokenType:    "Bearer",
				ExpiresIn:    900,
				Scope:        "profile:read",
			})
		case "/v1/userinfo":
			if r.Header.Get("Authorization") != "Bearer access-2" {
				ErrAccessDenied.WriteError(w)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, UserInfoResponse{Subject: "alice"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewSDKClient(srv.URL)
	// An expiry inside the refresh skew counts as already expired.
	s := c.NewSessionFromTokens("access-1", "refresh-1", "profile:read", 10)

	info, err := s.GetUserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", info.Subject)
	require.Equal(t, "access-2", s.AccessToken())
	require.Equal(t, "refresh-2", s.RefreshToken())

	_, err = s.GetUserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), refreshes.Load())
}

func TestClientSessionRefreshAuthenticates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "machine", r.Form.Get("client_id"))
		require.Equal(t, "machine-secret", r.Form.Get("client_secret"))

		switch r.Form.Get("grant_type") {
		case "client_credentials":
			httpx.WriteJSON(w, http.StatusOK, TokenResponse{
				AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 900,
			})
		case "refresh_token":
			require.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
			httpx.WriteJSON(w, http.StatusOK, TokenResponse{
				AccessToken: "access-2", RefreshToken: "refresh-2", ExpiresIn: 900,
			})
		default:
			ErrUnsupportedGrantType.WriteError(w)
		}
	}))
	defer srv.Close()

	c := NewSDKClient(srv.URL)
	s, err := c.AuthenticateWithClientCredentials(context.Background(), "machine", "machine-secret", nil)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, "access-2", s.AccessToken())
	require.Equal(t, "refresh-2", s.RefreshToken())
}

func TestSessionWithoutRefreshToken(t *testing.T) {
	c := NewSDKClient("http://127.0.0.1:0")
	s := c.NewSessionFromTokens("access", "", "profile:read", 0)

	_, err := s.GetUserInfo(context.Background())
	require.ErrorContains(t, err, "no refresh token")
}

func TestGetReadinessDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "degraded",
			Checks: &HealthChecks{Database: "error: closed", Signer: "ok"},
		})
	}))
	defer srv.Close()

	health, err := NewSDKClient(srv.URL).GetReadiness(context.Background())
	require.Error(t, err)
	require.NotNil(t, health)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "error: closed", health.Checks.Database)
}
