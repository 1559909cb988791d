package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the campus authentication service. It covers the
// unauthenticated endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login signs in with email and password and returns a Session. The login
// response, including the onboarding flags, is available from Session.User.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	req := LoginRequest{Email: email, Password: password}
	if errs := req.Validate(); errs != nil {
		return nil, &APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        ErrorCodeValidation,
			Description: "request validation failed",
			Details:     errs,
		}
	}

	var out LoginResponse
	if err := c.postJSON(ctx, "/api/auth/login", req, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return newSession(c, out), nil
}

// NewSessionFromTokens resumes a session from a stored token pair. User
// returns a zero LoginUser for such sessions until Me is called.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return newSession(c, LoginResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

// Refresh exchanges a refresh token for a new access token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.postJSON(ctx, "/api/auth/refresh", TokenRequest{Token: refreshToken}, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes a refresh token. The server answers 200 whether or not the
// token was live.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	var out OKResponse
	return c.postJSON(ctx, "/api/auth/logout", TokenRequest{Token: refreshToken}, nil, &out, http.StatusOK)
}

// Setup creates the first administrator. It requires the SETUP_TOKEN the
// server was started with and only works once.
func (c *SDKClient) Setup(ctx context.Context, setupToken string, req SetupRequest) (*UserResponse, error) {
	headers := map[string]string{"X-Setup-Token": setupToken}

	var out UserResponse
	if err := c.postJSON(ctx, "/api/auth/setup", req, headers, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) postJSON(
	ctx context.Context,
	path string,
	body any,
	headers map[string]string,
	target any,
	expectedStatus int,
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(payload), h)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}
