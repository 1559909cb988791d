package authsdk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshLeeway is how long before exp the access token is replaced.
const refreshLeeway = 30 * time.Second

// Session is an authenticated session with automatic access token refresh.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         LoginUser
}

func newSession(client *SDKClient, resp LoginResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  resp.AccessToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    tokenExpiry(resp.AccessToken),
		user:         resp.User,
	}
}

// tokenExpiry reads the exp claim without verifying the signature, minus
// refreshLeeway. Tokens without a readable exp are treated as expired.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Add(-refreshLeeway)
}

// getValidToken returns a valid access token, refreshing it if needed.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	resp, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = resp.AccessToken
	s.expiresAt = tokenExpiry(resp.AccessToken)
	return s.accessToken, nil
}

// User returns the user object of the login that created the session.
func (s *Session) User() LoginUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Logout revokes the session's refresh token. The session cannot refresh
// afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.refreshToken = ""
	s.mu.Unlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}
	return s.client.Logout(ctx, refreshToken)
}
