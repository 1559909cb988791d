/*
Package authsdk is the Go client for the campus authentication service and the
home of the JSON types the service speaks.

# SDKClient vs Session

An SDKClient talks to the public endpoints. Logging in returns a Session that
carries the token pair and refreshes the access token on demand:

	client := authsdk.NewSDKClient("http://localhost:4000")

	session, err := client.Login(ctx, "ana@school.edu", "AB123456")
	if err != nil {
		return err
	}
	if session.User().MustChangePassword {
		_, err = session.UpdateProfile(ctx, authsdk.UpdateProfileRequest{
			NewPassword: authsdk.String("a-better-password"),
		})
	}

Administrators use the same Session for account management:

	created, err := session.CreateUser(ctx, authsdk.CreateUserRequest{
		FirstName: "Ben",
		LastName:  "Ortiz",
		Email:     "ben@school.edu",
		Role:      authsdk.RoleStudent,
		CIN:       "CD654321",
	})

# Automatic Token Refresh

Every Session method calls getValidToken first. When the access token is
within 30 seconds of its exp claim, the refresh token is exchanged at
POST /api/auth/refresh. The refresh token itself is never rotated, so a
Session lives until its refresh token expires or Logout is called.

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status and the
error code from the body:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeEmailConflict {
		// pick another email
	}

# Validation

Request types implement Validate() map[string]string. The server runs the same
checks and answers 400 with a ValidationErrorResponse when they fail.

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
