package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Admin operations. Every call requires an account with the admin role.

// CreateUser provisions an account whose login and first password are the CIN.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*CreateUserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/admin/users", req)
	if err != nil {
		return nil, err
	}

	var out CreateUserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// ListUsers lists accounts, newest first.
func (s *Session) ListUsers(ctx context.Context, params ListUsersParams) (*ListUsersResponse, error) {
	q := url.Values{}
	if params.CIN != "" {
		q.Set("cin", params.CIN)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.All {
		q.Set("all", "true")
	}

	path := "/api/auth/admin/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out ListUsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// UpdateUser patches an account's names, email or role.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/api/auth/admin/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteUser removes an account. An unknown id yields ErrNotFound.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/api/auth/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	var out OKResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// AdminOnly calls the admin probe endpoint.
func (s *Session) AdminOnly(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/auth/admin-only", nil)
	if err != nil {
		return err
	}

	var out OKResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
