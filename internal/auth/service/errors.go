package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailConflict      = errors.New("email_conflict")
	ErrPasswordPolicy     = errors.New("password_policy")
	ErrBadCredentials     = errors.New("bad_credentials")

	// ErrCurrentPasswordRequired is a BadCredentials refinement: the caller
	// omitted the current password rather than getting it wrong.
	ErrCurrentPasswordRequired = fmt.Errorf("current_password_required: %w", ErrBadCredentials)

	ErrMissingToken    = errors.New("missing_token")
	ErrInvalidToken    = errors.New("invalid_token")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrAccountNotFound = errors.New("account_not_found")

	ErrSetupDisabled     = errors.New("setup_disabled")
	ErrSetupUnauthorized = errors.New("setup_unauthorized")
	ErrAlreadySetUp      = errors.New("already_set_up")
)

// MinPasswordLength is the shortest password accepted by a password change.
const MinPasswordLength = 8

// MinCINLength is the shortest CIN accepted when provisioning an account.
const MinCINLength = 6
