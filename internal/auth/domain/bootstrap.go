package domain

// NewAccount holds the fields an administrator supplies to provision an
// account. CIN becomes both the login and the initial password.
type NewAccount struct {
	FirstName string
	LastName  string
	Email     string
	Role      Role
	CIN       string
}

// SetupData describes the first administrator created by system setup.
type SetupData struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}
