package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/campusid/auth/pkg/httpx"
)

// Error codes carried in the "error" field of error responses.
const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeValidation              = "validation_error"
	ErrorCodeInvalidCredentials      = "invalid_credentials"
	ErrorCodeMissingToken            = "missing_token"
	ErrorCodeInvalidToken            = "invalid_token"
	ErrorCodeForbidden               = "forbidden"
	ErrorCodeNotFound                = "not_found"
	ErrorCodeAccountNotFound         = "account_not_found"
	ErrorCodeEmailConflict           = "email_conflict"
	ErrorCodePasswordPolicy          = "password_policy"
	ErrorCodeCurrentPasswordRequired = "current_password_required"
	ErrorCodeBadCredentials          = "bad_credentials"
	ErrorCodeSetupUnauthorized       = "setup_unauthorized"
	ErrorCodeAlreadySetUp            = "already_set_up"
	ErrorCodeTooManyRequests         = "too_many_requests"
	ErrorCodeServerError             = "server_error"
)

// APIError is an error response from the service. The server writes it with
// WriteError and the client gets it back from every failed call.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int `json:"-"`

	// Code is the machine readable error code (e.g. "email_conflict")
	Code string `json:"error"`

	// Description is a human readable description of the error
	Description string `json:"error_description"`

	// Details is set for validation errors (field name: message)
	Details map[string]string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError with the same status and code, so callers can
// write errors.Is(err, authsdk.ErrEmailConflict).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode && t.Code == e.Code
}

// WriteError writes e as an ErrorResponse.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request body is malformed",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	ErrMissingToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMissingToken,
		Description: "missing bearer token",
	}

	// ErrInvalidToken covers malformed, expired, revoked and badly signed
	// tokens alike.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is invalid, expired or revoked",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "insufficient role",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	ErrAccountNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeAccountNotFound,
		Description: "account not found",
	}

	ErrEmailConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailConflict,
		Description: "email or login already in use",
	}

	ErrPasswordPolicy = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodePasswordPolicy,
		Description: "new password must be at least 8 characters",
	}

	ErrCurrentPasswordRequired = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeCurrentPasswordRequired,
		Description: "current password required to change password",
	}

	ErrBadCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeBadCredentials,
		Description: "current password incorrect",
	}

	ErrSetupUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeSetupUnauthorized,
		Description: "invalid setup token",
	}

	ErrAlreadySetUp = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadySetUp,
		Description: "system has already been set up",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// WriteValidationError answers 400 with the field errors from a Validate call.
func WriteValidationError(w http.ResponseWriter, details map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Code:    ErrorCodeValidation,
		Message: "request validation failed",
		Details: details,
	})
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	var valErr ValidationErrorResponse
	if err := json.Unmarshal(body, &valErr); err == nil && valErr.Code != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        valErr.Code,
			Description: valErr.Message,
			Details:     valErr.Details,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
