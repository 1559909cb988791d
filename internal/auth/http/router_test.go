package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	authhttp "github.com/campusid/auth/internal/auth/http"
	"github.com/campusid/auth/internal/auth/metrics"
	"github.com/campusid/auth/internal/auth/registry/memory"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/internal/auth/store/drivers/sqlite"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
)

const setupToken = "setup-token"

var generous = httpx.RateLimitConfig{Requests: 1000, Window: time.Minute, Burst: 1000}

func newServer(t *testing.T, setup string, limits authhttp.RateLimits) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	reg := memory.New()
	m := metrics.New()

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret: service.DefaultAccessSecret,
		Issuer:       "campus-auth",
	}, st, reg)
	require.NoError(t, err)
	tokens.Metrics = m

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter("test", st, reg, m, limits, logger)
	router.TokenService = tokens
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens, Metrics: m}
	router.AccountService = &service.AccountService{Store: st}
	router.SetupService = &service.SetupService{Store: st, Token: setup}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func generousLimits() authhttp.RateLimits {
	return authhttp.RateLimits{Strict: generous, Moderate: generous, Lenient: generous}
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestProvisionedAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t, setupToken, generousLimits())
	client := authsdk.NewSDKClient(srv.URL)

	// 1. First administrator
	_, err := client.Setup(ctx, "wrong", authsdk.SetupRequest{
		FirstName: "Root", LastName: "Admin", Email: "root@school.edu", Password: "super-secret",
	})
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeSetupUnauthorized)

	created, err := client.Setup(ctx, setupToken, authsdk.SetupRequest{
		FirstName: "Root", LastName: "Admin", Email: "root@school.edu", Password: "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, authsdk.RoleAdmin, created.User.Role)

	_, err = client.Setup(ctx, setupToken, authsdk.SetupRequest{
		FirstName: "Again", LastName: "Admin", Email: "again@school.edu", Password: "super-secret",
	})
	requireAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadySetUp)

	admin, err := client.Login(ctx, "root@school.edu", "super-secret")
	require.NoError(t, err)
	require.False(t, admin.User().MustChangePassword)
	require.NoError(t, admin.AdminOnly(ctx))

	// 2. Provision a teacher with CIN AB123456
	req := authsdk.CreateUserRequest{
		FirstName: "Ana", LastName: "Ruiz", Email: "ana@school.edu", Role: authsdk.RoleTeacher, CIN: "AB123456",
	}
	provisioned, err := admin.CreateUser(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "AB123456", provisioned.InitialCredentials.Login)
	require.Equal(t, authsdk.RoleTeacher, provisioned.User.Role)

	_, err = admin.CreateUser(ctx, req)
	require.True(t, errors.Is(err, authsdk.ErrEmailConflict))

	// 3. First login with the CIN forces a password change
	teacher, err := client.Login(ctx, "ana@school.edu", "AB123456")
	require.NoError(t, err)
	require.True(t, teacher.User().MustChangePassword)
	require.False(t, teacher.User().MustCompleteProfile)
	require.NotNil(t, teacher.User().Login)
	require.Equal(t, "AB123456", *teacher.User().Login)

	err = teacher.AdminOnly(ctx)
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)

	me, err := teacher.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, provisioned.User.ID, me.ID)
	require.Equal(t, "Ana", me.FirstName)

	// 4. No current password is needed while the password is the CIN
	_, err = teacher.UpdateProfile(ctx, authsdk.UpdateProfileRequest{NewPassword: authsdk.String("a-better-password")})
	require.NoError(t, err)

	_, err = client.Login(ctx, "ana@school.edu", "AB123456")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	teacher, err = client.Login(ctx, "ana@school.edu", "a-better-password")
	require.NoError(t, err)
	require.False(t, teacher.User().MustChangePassword)

	// 5. From now on the current password is required
	_, err = teacher.UpdateProfile(ctx, authsdk.UpdateProfileRequest{NewPassword: authsdk.String("another-password")})
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeCurrentPasswordRequired)

	_, err = teacher.UpdateProfile(ctx, authsdk.UpdateProfileRequest{
		NewPassword:     authsdk.String("another-password"),
		CurrentPassword: authsdk.String("wrong-password"),
	})
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeBadCredentials)

	// 6. Refresh, then logout revokes the refresh token
	refreshed, err := client.Refresh(ctx, teacher.RefreshToken())
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, client.Logout(ctx, teacher.RefreshToken()))
	require.NoError(t, client.Logout(ctx, teacher.RefreshToken()))

	_, err = client.Refresh(ctx, teacher.RefreshToken())
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	// 7. Admin listing, update and delete
	list, err := admin.ListUsers(ctx, authsdk.ListUsersParams{CIN: "AB123456"})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	require.Equal(t, provisioned.User.ID, list.Users[0].ID)

	list, err = admin.ListUsers(ctx, authsdk.ListUsersParams{All: true})
	require.NoError(t, err)
	require.Len(t, list.Users, 2)

	updated, err := admin.UpdateUser(ctx, provisioned.User.ID, authsdk.UpdateUserRequest{Role: authsdk.String(authsdk.RoleDirector)})
	require.NoError(t, err)
	require.Equal(t, authsdk.RoleDirector, updated.User.Role)

	_, err = admin.UpdateUser(ctx, provisioned.User.ID, authsdk.UpdateUserRequest{Email: authsdk.String("root@school.edu")})
	requireAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeEmailConflict)

	require.NoError(t, admin.DeleteUser(ctx, provisioned.User.ID))
	err = admin.DeleteUser(ctx, provisioned.User.ID)
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	// The access token is still valid but its account is gone
	_, err = teacher.Me(ctx)
	requireAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeAccountNotFound)
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestErrorResponses(t *testing.T) {
	srv := newServer(t, "", generousLimits())

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers map[string]string
		status  int
		code    string
	}{
		{"me without token", http.MethodGet, "/api/auth/me", "", nil, http.StatusUnauthorized, authsdk.ErrorCodeMissingToken},
		{"me with garbage token", http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer x.y.z"}, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken},
		{"admin route without token", http.MethodGet, "/api/auth/admin/users", "", nil, http.StatusUnauthorized, authsdk.ErrorCodeMissingToken},
		{"malformed login body", http.MethodPost, "/api/auth/login", "{", nil, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"unknown login field", http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x","extra":1}`, nil, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"unknown account", http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x"}`, nil, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"refresh with garbage", http.MethodPost, "/api/auth/refresh", `{"token":"nope"}`, nil, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken},
		{"setup disabled", http.MethodPost, "/api/auth/setup", `{}`, map[string]string{authhttp.SetupTokenHeader: "x"}, http.StatusNotFound, authsdk.ErrorCodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := do(t, srv, tc.method, tc.path, tc.body, tc.headers)
			require.Equal(t, tc.status, resp.StatusCode)

			var body authsdk.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			require.Equal(t, tc.code, body.Error)
		})
	}

	t.Run("validation errors list fields", func(t *testing.T) {
		resp, raw := do(t, srv, http.MethodPost, "/api/auth/login", `{"email":"nope"}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body authsdk.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Equal(t, authsdk.ErrorCodeValidation, body.Code)
		require.Contains(t, body.Details, "email")
		require.Contains(t, body.Details, "password")
	})

	t.Run("logout of an unknown token succeeds", func(t *testing.T) {
		resp, raw := do(t, srv, http.MethodPost, "/api/auth/logout", `{"token":"never-issued"}`, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"ok":true}`, string(raw))
	})
}

func TestAdminRejectsMalformedAccountID(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t, setupToken, generousLimits())
	client := authsdk.NewSDKClient(srv.URL)

	_, err := client.Setup(ctx, setupToken, authsdk.SetupRequest{
		FirstName: "Root", LastName: "Admin", Email: "root@school.edu", Password: "super-secret",
	})
	require.NoError(t, err)
	admin, err := client.Login(ctx, "root@school.edu", "super-secret")
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + admin.AccessToken()}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"update with non ulid id", http.MethodPut, "/api/auth/admin/users/42", `{"first_name":"X"}`},
		{"update with short ulid", http.MethodPut, "/api/auth/admin/users/01ARZ3NDEKTSV4RRFFQ69G5FA", `{"first_name":"X"}`},
		{"delete with non ulid id", http.MethodDelete, "/api/auth/admin/users/not-an-id", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := do(t, srv, tc.method, tc.path, tc.body, auth)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)

			var body authsdk.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			require.Equal(t, authsdk.ErrorCodeAccountNotFound, body.Error)
		})
	}
}

func TestSystemEndpoints(t *testing.T) {
	srv := newServer(t, "", generousLimits())

	resp, raw := do(t, srv, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `"status":"ok"`)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, raw = do(t, srv, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(raw, &health))
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Registry)

	// One failed login so the counter has a sample
	do(t, srv, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x"}`, nil)

	resp, raw = do(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `campus_auth_logins_total{outcome="invalid_credentials"} 1`)
	require.Contains(t, string(raw), "campus_auth_http_requests_total")
}

func TestLoginRateLimit(t *testing.T) {
	strict := httpx.RateLimitConfig{Requests: 2, Window: time.Minute, Burst: 2}
	srv := newServer(t, "", authhttp.RateLimits{Strict: strict, Moderate: generous, Lenient: generous})

	for range 2 {
		resp, _ := do(t, srv, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x"}`, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, raw := do(t, srv, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	require.Contains(t, string(raw), authsdk.ErrorCodeTooManyRequests)

	// Other routes keep their own budget
	resp, _ = do(t, srv, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
