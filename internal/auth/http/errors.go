package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
	"github.com/campusid/auth/pkg/slogx"
)

// serviceErrors maps service outcomes to responses. Order matters:
// ErrCurrentPasswordRequired wraps ErrBadCredentials and must match first.
var serviceErrors = []struct {
	err  error
	resp *authsdk.APIError
}{
	{service.ErrInvalidInput, authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "missing or invalid fields")},
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrEmailConflict, authsdk.ErrEmailConflict},
	{service.ErrPasswordPolicy, authsdk.ErrPasswordPolicy},
	{service.ErrCurrentPasswordRequired, authsdk.ErrCurrentPasswordRequired},
	{service.ErrBadCredentials, authsdk.ErrBadCredentials},
	{service.ErrMissingToken, authsdk.ErrMissingToken},
	{service.ErrInvalidToken, authsdk.ErrInvalidToken},
	{service.ErrForbidden, authsdk.ErrForbidden},
	{service.ErrNotFound, authsdk.ErrNotFound},
	{service.ErrAccountNotFound, authsdk.ErrAccountNotFound},
	{service.ErrSetupDisabled, authsdk.ErrNotFound},
	{service.ErrSetupUnauthorized, authsdk.ErrSetupUnauthorized},
	{service.ErrAlreadySetUp, authsdk.ErrAlreadySetUp},
}

// writeServiceError answers with the response matching err. Anything
// unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.resp.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("unhandled service error", slog.Any("error", err))
	authsdk.ErrServerError.WriteError(w)
}

type validator interface {
	Validate() map[string]string
}

// decodeRequest decodes the JSON body into v and runs its Validate method.
// It writes the 400 response itself and returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v validator) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"request body must be valid JSON").WriteError(w)
		return false
	}
	if errs := v.Validate(); errs != nil {
		authsdk.WriteValidationError(w, errs)
		return false
	}
	return true
}
