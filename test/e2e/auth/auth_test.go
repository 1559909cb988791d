//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusid/auth/pkg/authsdk"
)

// TestProvisioningFlow walks a provisioned student from creation to a
// revoked session on Postgres and Redis.
func TestProvisioningFlow(t *testing.T) {
	baseURL := startService(t, setupBackends(t), false)
	client := authsdk.NewSDKClient(baseURL)
	admin := setupAdmin(t, client)

	created, err := admin.CreateUser(t.Context(), authsdk.CreateUserRequest{
		FirstName: "Sara",
		LastName:  "Benali",
		Email:     "Sara.Benali@School.edu",
		Role:      authsdk.RoleStudent,
		CIN:       "AB123456",
	})
	require.NoError(t, err)
	require.Equal(t, "sara.benali@school.edu", created.User.Email)
	require.Equal(t, "AB123456", created.InitialCredentials.Login)

	student, err := client.Login(t.Context(), "sara.benali@school.edu", "AB123456")
	require.NoError(t, err)
	require.True(t, student.User().MustChangePassword)

	_, err = student.UpdateProfile(t.Context(), authsdk.UpdateProfileRequest{
		NewPassword: authsdk.String("a-strong-password"),
	})
	require.NoError(t, err)

	student, err = client.Login(t.Context(), "sara.benali@school.edu", "a-strong-password")
	require.NoError(t, err)
	require.False(t, student.User().MustChangePassword)

	refreshed, err := client.Refresh(t.Context(), student.RefreshToken())
	require.NoError(t, err)
	require.NotEqual(t, student.AccessToken(), refreshed.AccessToken)

	require.NoError(t, student.Logout(t.Context()))

	_, err = client.Refresh(t.Context(), student.RefreshToken())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
}

// TestAdminUserManagement covers listing, updating and deleting accounts.
func TestAdminUserManagement(t *testing.T) {
	baseURL := startService(t, setupBackends(t), false)
	client := authsdk.NewSDKClient(baseURL)
	admin := setupAdmin(t, client)

	for _, req := range []authsdk.CreateUserRequest{
		{FirstName: "Ali", LastName: "One", Email: "ali@school.edu", Role: authsdk.RoleTeacher, CIN: "CD111111"},
		{FirstName: "Ben", LastName: "Two", Email: "ben@school.edu", Role: authsdk.RoleStudent, CIN: "CD222222"},
	} {
		_, err := admin.CreateUser(t.Context(), req)
		require.NoError(t, err)
	}

	all, err := admin.ListUsers(t.Context(), authsdk.ListUsersParams{All: true})
	require.NoError(t, err)
	require.Len(t, all.Users, 3)

	byCIN, err := admin.ListUsers(t.Context(), authsdk.ListUsersParams{CIN: "CD222222"})
	require.NoError(t, err)
	require.Len(t, byCIN.Users, 1)
	ben := byCIN.Users[0]

	updated, err := admin.UpdateUser(t.Context(), ben.ID, authsdk.UpdateUserRequest{
		FirstName: authsdk.String("Benjamin"),
		Role:      authsdk.String(authsdk.RoleDirector),
	})
	require.NoError(t, err)
	require.Equal(t, "Benjamin", updated.User.FirstName)
	require.Equal(t, authsdk.RoleDirector, updated.User.Role)

	_, err = admin.UpdateUser(t.Context(), ben.ID, authsdk.UpdateUserRequest{
		Email: authsdk.String("ali@school.edu"),
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeEmailConflict)

	require.NoError(t, admin.DeleteUser(t.Context(), ben.ID))
	err = admin.DeleteUser(t.Context(), ben.ID)
	assertAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeAccountNotFound)

	_, err = client.Login(t.Context(), "ben@school.edu", "CD222222")
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
}

// TestRefreshSurvivesRestart checks that refresh tokens live in Redis rather
// than in the process.
func TestRefreshSurvivesRestart(t *testing.T) {
	b := setupBackends(t)

	first := authsdk.NewSDKClient(startService(t, b, false))
	session := setupAdmin(t, first)

	second := authsdk.NewSDKClient(startService(t, b, false))
	refreshed, err := second.Refresh(t.Context(), session.RefreshToken())
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	// The first administrator already exists in Postgres.
	_, err = second.Setup(t.Context(), setupToken, authsdk.SetupRequest{
		FirstName: "Other", LastName: "Admin", Email: "other@school.edu", Password: adminPassword,
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadySetUp)
}

func TestHealth(t *testing.T) {
	client := authsdk.NewSDKClient(startService(t, setupBackends(t), false))

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Registry)
}

// TestLoginRateLimit runs with the production limits.
func TestLoginRateLimit(t *testing.T) {
	client := authsdk.NewSDKClient(startService(t, setupBackends(t), true))

	var limited bool
	for range 10 {
		_, err := client.Login(t.Context(), "nobody@school.edu", "wrong-password")
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		if apiErr.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	}
	require.True(t, limited, "login should be rate limited")
}
