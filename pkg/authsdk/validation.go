package authsdk

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Field limits shared by the server and the client.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit
	MinCINLength      = 6
	MaxNameLength     = 200
)

var roleRule = validation.In(RoleStudent, RoleTeacher, RoleAdmin, RoleDirector).
	Error("must be one of student, teacher, admin, director")

// Validate checks a login request.
func (r LoginRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	))
}

// Validate checks a refresh or logout request.
func (r TokenRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	))
}

// Validate checks a profile update. Blank fields are valid and ignored.
func (r UpdateProfileRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, MaxNameLength)),
		validation.Field(&r.LastName, validation.Length(1, MaxNameLength)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.NewPassword, validation.Length(MinPasswordLength, MaxPasswordLength)),
	))
}

// Validate checks an account provisioning request.
func (r CreateUserRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Role, validation.Required, roleRule),
		validation.Field(&r.CIN, validation.Required, validation.Length(MinCINLength, 64)),
	))
}

// Validate checks an admin account update.
func (r UpdateUserRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, MaxNameLength)),
		validation.Field(&r.LastName, validation.Length(1, MaxNameLength)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Role, roleRule),
	))
}

// Validate checks a setup request.
func (r SetupRequest) Validate() map[string]string {
	return fieldErrors(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
	))
}

// fieldErrors flattens ozzo errors into field name: message, or nil.
func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(errs))
	for field, e := range errs {
		out[field] = e.Error()
	}
	return out
}
