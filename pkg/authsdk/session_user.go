package authsdk

import (
	"context"
	"net/http"
)

// Me returns the current record of the signed-in account.
func (s *Session) Me(ctx context.Context) (*UserSummary, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var me UserSummary
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}

	return &me, nil
}

// UpdateProfile changes the signed-in account. CurrentPassword is needed for
// a password change unless the account still uses its CIN as password.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*ProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/api/auth/me", req)
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	if req.NewPassword != nil && *req.NewPassword != "" {
		s.mu.Lock()
		s.user.MustChangePassword = false
		s.mu.Unlock()
	}

	return &out, nil
}
