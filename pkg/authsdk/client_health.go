package authsdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// GetLiveness checks if the service process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.getHealth(ctx, "/livez")
}

// GetReadiness checks the service dependencies. A degraded service returns
// both the decoded report and an *APIError with status 503.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.getHealth(ctx, "/readyz")
}

func (c *SDKClient) getHealth(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	decodeErr := json.Unmarshal(body, &health)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode:  resp.StatusCode,
			Code:        health.Status,
			Description: http.StatusText(resp.StatusCode),
		}
		if decodeErr != nil || health.Status == "" {
			return nil, parseErrorResponse(resp, body)
		}
		return &health, apiErr
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return &health, nil
}
