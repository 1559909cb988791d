package http

import (
	"net/http"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
	"github.com/campusid/auth/pkg/slogx"
)

// SetupTokenHeader carries the SETUP_TOKEN on POST /api/auth/setup.
const SetupTokenHeader = "X-Setup-Token"

type SetupHandler struct {
	SetupService *service.SetupService
}

// ServeHTTP creates the first administrator.
//
//	@Summary		Initial setup
//	@Description	Creates the first admin account. Only available when a setup token is configured,
//	@Description	and only while no account exists.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			X-Setup-Token	header		string							true	"Setup token"
//	@Param			request			body		authsdk.SetupRequest			true	"Administrator"
//	@Success		201				{object}	authsdk.UserResponse			"Created administrator"
//	@Failure		400				{object}	authsdk.ValidationErrorResponse	"Validation failed"
//	@Failure		401				{object}	authsdk.ErrorResponse			"Missing or invalid setup token"
//	@Failure		404				{object}	authsdk.ErrorResponse			"Setup not enabled"
//	@Failure		409				{object}	authsdk.ErrorResponse			"Already set up"
//	@Router			/api/auth/setup [post].
func (h *SetupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if !h.SetupService.Enabled() {
		authsdk.ErrNotFound.WriteError(w)
		return
	}

	// 2. Require the token header
	token := r.Header.Get(SetupTokenHeader)
	if token == "" {
		authsdk.ErrSetupUnauthorized.WriteError(w)
		return
	}

	// 3. Parse and validate
	var req authsdk.SetupRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	// 4. Create the administrator
	view, err := h.SetupService.Setup(r.Context(), token, domain.SetupData{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	l.Info("first administrator created")
	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{User: toAccountResponse(view)})
}
