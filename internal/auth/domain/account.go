package domain

import "time"

type Account struct {
	ID           string // ULID, lexically ordered by creation time
	FirstName    string
	LastName     string
	Email        string  // empty means no email on record
	Role         Role
	Login        *string // CIN issued by an administrator (nullable)
	PasswordHash string  // bcrypt encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordChecker reports whether secret matches digest.
type PasswordChecker func(secret, digest string) bool

// InBootstrapState reports whether the account still signs in with the CIN it
// was provisioned with. It is recomputed on every call and never stored, so it
// clears itself as soon as the password changes.
func (a Account) InBootstrapState(check PasswordChecker) bool {
	if a.Login == nil || *a.Login == "" {
		return false
	}
	return check(*a.Login, a.PasswordHash)
}

// ProfileIncomplete reports whether any of first name, last name or email is
// missing.
func (a Account) ProfileIncomplete() bool {
	return a.FirstName == "" || a.LastName == "" || a.Email == ""
}

// View returns the public projection of the account.
func (a Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
		Login:     a.Login,
	}
}

// AccountView is an Account without its password hash.
type AccountView struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      Role
	Login     *string
}

// AccountPatch carries a partial update. Nil fields are left unchanged.
type AccountPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Role         *Role
	PasswordHash *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Role == nil && p.PasswordHash == nil
}

// DefaultListLimit caps ListAccounts when neither a login filter nor All is
// requested.
const DefaultListLimit = 5

// ListFilter selects accounts for the admin listing. Login takes precedence
// over Limit and All.
type ListFilter struct {
	Login *string
	Limit int
	All   bool
}

// EffectiveLimit returns the row cap to apply, or 0 for no cap.
func (f ListFilter) EffectiveLimit() int {
	switch {
	case f.Login != nil, f.All:
		return 0
	case f.Limit > 0:
		return f.Limit
	default:
		return DefaultListLimit
	}
}

// ProfileUpdate is a self-service change request. Nil fields are left
// unchanged. CurrentPassword is only consulted when NewPassword is set.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	Email           *string
	CurrentPassword *string
	NewPassword     *string
}
