package http

import (
	"net/http"

	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin signs an account in.
//
//	@Summary		Sign in
//	@Description	Verifies email and password and returns an access token, a refresh token and the account.
//	@Description	mustChangePassword is set while the password is still the CIN issued by an administrator;
//	@Description	mustCompleteProfile is set while first name, last name or email is missing.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest			true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse			"Tokens and account"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Invalid request body"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Too many attempts"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	bundle, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		User: authsdk.LoginUser{
			AccountResponse:     toAccountResponse(bundle.Account),
			MustChangePassword:  bundle.MustChangePassword,
			MustCompleteProfile: bundle.MustCompleteProfile,
		},
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
	})
}

// HandleRefresh exchanges a refresh token for a new access token.
//
//	@Summary		Refresh the access token
//	@Description	Returns a new access token for a registered, unexpired refresh token. The refresh token is not rotated.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TokenRequest			true	"Refresh token"
//	@Success		200		{object}	authsdk.RefreshResponse			"New access token"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Missing token"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid, expired or revoked refresh token"
//	@Failure		404		{object}	authsdk.ErrorResponse			"Account no longer exists"
//	@Router			/api/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	access, err := h.AuthService.RefreshAccessToken(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{AccessToken: access})
}

// HandleLogout revokes a refresh token.
//
//	@Summary		Sign out
//	@Description	Revokes the refresh token. Always answers 200, whether or not the token was live.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TokenRequest			true	"Refresh token"
//	@Success		200		{object}	authsdk.OKResponse				"Revoked"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Missing token"
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.AuthService.Logout(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.OKResponse{OK: true})
}
