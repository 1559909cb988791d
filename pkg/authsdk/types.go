package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	// Error is the error code (e.g. "invalid_token", "email_conflict")
	Error string `json:"error"`

	// ErrorDescription is a human readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ValidationErrorResponse is returned with 400 when a request body fails its
// Validate checks.
type ValidationErrorResponse struct {
	// Code is always "validation_error"
	Code string `json:"code"`

	// Message is a human readable error message
	Message string `json:"message"`

	// Details contains field-specific validation errors (field name: error message)
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Roles
// ============================================================================

// Wire names of the account roles.
const (
	RoleStudent  = "student"
	RoleTeacher  = "teacher"
	RoleAdmin    = "admin"
	RoleDirector = "director"
)

// Roles lists every assignable role.
func Roles() []string {
	return []string{RoleStudent, RoleTeacher, RoleAdmin, RoleDirector}
}

// ============================================================================
// Accounts
// ============================================================================

// UserSummary is the public view of an account.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AccountResponse is a UserSummary plus the CIN login, used by the admin
// endpoints.
type AccountResponse struct {
	UserSummary

	// Login is the CIN issued at provisioning; nil for accounts created by setup
	Login *string `json:"login"`
}

// LoginUser is the user object of a login response. The two flags tell the
// client which onboarding step to force.
type LoginUser struct {
	AccountResponse

	// MustChangePassword is true while the password is still the CIN
	MustChangePassword bool `json:"mustChangePassword"`

	// MustCompleteProfile is true while first name, last name or email is empty
	MustCompleteProfile bool `json:"mustCompleteProfile"`
}

// InitialCredentials is returned once when an administrator provisions an
// account. The login is also the first password.
type InitialCredentials struct {
	Login string `json:"login"`
}

// ============================================================================
// Requests
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenRequest is the body of POST /api/auth/refresh and POST /api/auth/logout.
type TokenRequest struct {
	Token string `json:"token"`
}

// UpdateProfileRequest is the body of PUT /api/auth/me. Omitted or blank
// fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
}

// CreateUserRequest is the body of POST /api/auth/admin/users.
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CIN       string `json:"cin"`
}

// UpdateUserRequest is the body of PUT /api/auth/admin/users/{id}. Omitted or
// blank fields are left unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Role      *string `json:"role,omitempty"`
}

// ListUsersParams are the query parameters of GET /api/auth/admin/users.
type ListUsersParams struct {
	// CIN returns only the account with this login
	CIN string

	// Limit caps the result; the server default is 5
	Limit int

	// All lifts the cap
	All bool
}

// SetupRequest is the body of POST /api/auth/setup.
type SetupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ============================================================================
// Responses
// ============================================================================

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	User         LoginUser `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

// RefreshResponse is returned by POST /api/auth/refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// OKResponse is returned by endpoints with nothing else to say.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ProfileResponse wraps the updated account of PUT /api/auth/me.
type ProfileResponse struct {
	User UserSummary `json:"user"`
}

// CreateUserResponse is returned by POST /api/auth/admin/users.
type CreateUserResponse struct {
	User               UserSummary        `json:"user"`
	InitialCredentials InitialCredentials `json:"initialCredentials"`
}

// ListUsersResponse is returned by GET /api/auth/admin/users.
type ListUsersResponse struct {
	Users []AccountResponse `json:"users"`
}

// UserResponse wraps a single account for the admin and setup endpoints.
type UserResponse struct {
	User AccountResponse `json:"user"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status indicates the overall health status ("ok" or "degraded")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks is only set by /readyz
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies probed by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Registry string `json:"registry"`
}

// String returns a pointer to s, for the optional fields of update requests.
func String(s string) *string { return &s }
