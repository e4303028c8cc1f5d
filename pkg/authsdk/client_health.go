package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetLiveness reports whether the service process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness reports whether the service can take traffic. A degraded
// service answers 503; the checks still come back alongside the error so
// callers can see which dependency failed.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var health HealthResponse
	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, &health); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &health, nil
	case http.StatusServiceUnavailable:
		if err := json.Unmarshal(body, &health); err == nil && health.Status != "" {
			return &health, fmt.Errorf("service %s: %s", health.Status, path)
		}
	}
	return nil, parseErrorResponse(resp, body)
}
