package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// CreateClient registers a client. Requires admin:write.
func (s *Session) CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/admin/clients",
		bytes.NewReader(body), jsonHeaders, "admin:write")
	if err != nil {
		return nil, err
	}

	var createResp CreateClientResponse
	if err := decodeJSON(resp, &createResp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &createResp, nil
}

// ListClients returns every registered client. Requires admin:read.
func (s *Session) ListClients(ctx context.Context) (*ListClientsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/admin/clients", nil, nil, "admin:read")
	if err != nil {
		return nil, err
	}

	var listResp ListClientsResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &listResp, nil
}

// UpdateClientScopes replaces a client's scopes. Requires admin:write.
func (s *Session) UpdateClientScopes(ctx context.Context, clientID string, scopes []string) error {
	body, err := json.Marshal(UpdateClientScopesRequest{Scopes: scopes})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut,
		"/v1/admin/clients/"+url.PathEscape(clientID)+"/scopes",
		bytes.NewReader(body), jsonHeaders, "admin:write")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteClient removes a client. Requires admin:write.
func (s *Session) DeleteClient(ctx context.Context, clientID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete,
		"/v1/admin/clients/"+url.PathEscape(clientID), nil, nil, "admin:write")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
