package domain

// CredentialBundle is what a successful login returns. The two flags are
// derived from the account on every login and are never persisted.
type CredentialBundle struct {
	AccessToken         string
	RefreshToken        string
	Account             AccountView
	MustChangePassword  bool
	MustCompleteProfile bool
}

// InitialCredentials is handed back once, when an administrator provisions an
// account. The login doubles as the first password.
type InitialCredentials struct {
	Login string
}
