package http

import (
	"net/http"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/guard"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
)

type MeHandler struct {
	AuthService *service.AuthService
}

// HandleGet returns the signed-in account.
//
//	@Summary		Current account
//	@Description	Returns the current record of the account the access token belongs to.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserSummary		"Account"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Router			/api/auth/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.BearerToken(r)
	if !ok {
		authsdk.ErrMissingToken.WriteError(w)
		return
	}

	view, err := h.AuthService.WhoAmI(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserSummary(view))
}

// HandleUpdate changes the signed-in account.
//
//	@Summary		Update profile
//	@Description	Updates names, email or password. Blank fields are ignored.
//	@Description	A password change needs current_password unless the password is still the CIN.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.ProfileResponse			"Updated account"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Validation failed, password too short or current password missing"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid access token or wrong current password"
//	@Failure		404		{object}	authsdk.ErrorResponse			"Account no longer exists"
//	@Failure		409		{object}	authsdk.ErrorResponse			"Email already in use"
//	@Router			/api/auth/me [put].
func (h *MeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := guard.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	view, err := h.AuthService.UpdateProfile(r.Context(), claims.AccountID, domain.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{User: toUserSummary(view)})
}
