package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetUserInfo describes the session's own subject. Requires profile:read.
func (s *Session) GetUserInfo(ctx context.Context) (*UserInfoResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/userinfo", nil, nil, "profile:read")
	if err != nil {
		return nil, err
	}

	var userInfo UserInfoResponse
	if err := decodeJSON(resp, &userInfo, http.StatusOK); err != nil {
		return nil, err
	}
	return &userInfo, nil
}

// IntrospectToken asks whether token is a live access token carrying every
// scope in requiredScope (space delimited, may be empty).
func (s *Session) IntrospectToken(
	ctx context.Context,
	token, requiredScope string,
) (*IntrospectionResponse, error) {
	data := url.Values{
		"token":           {token},
		"token_type_hint": {"access_token"},
	}
	if requiredScope != "" {
		data.Set("scope", requiredScope)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/oauth2/introspect",
		strings.NewReader(data.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var introspectResp IntrospectionResponse
	if err := decodeJSON(resp, &introspectResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &introspectResp, nil
}

// CreateUser adds a resource owner. Requires admin:write.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/admin/users",
		bytes.NewReader(body), jsonHeaders, "admin:write")
	if err != nil {
		return nil, err
	}

	var createResp CreateUserResponse
	if err := decodeJSON(resp, &createResp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &createResp, nil
}

// ChangePassword sets a user's password. Requires admin:write.
func (s *Session) ChangePassword(ctx context.Context, userID, password string) error {
	body, err := json.Marshal(ChangePasswordRequest{Password: password})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut,
		"/v1/admin/users/"+url.PathEscape(userID)+"/password",
		bytes.NewReader(body), jsonHeaders, "admin:write")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteUser removes a user. Requires admin:write.
func (s *Session) DeleteUser(ctx context.Context, userID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete,
		"/v1/admin/users/"+url.PathEscape(userID), nil, nil, "admin:write")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Sweep forces a housekeeping pass. Requires admin:write.
func (s *Session) Sweep(ctx context.Context) (*SweepResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/admin/sweep", nil, nil, "admin:write")
	if err != nil {
		return nil, err
	}

	var sweepResp SweepResponse
	if err := decodeJSON(resp, &sweepResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &sweepResp, nil
}
