package domain

import (
	"errors"
	"strings"
)

// ErrUnknownRole is returned when a string does not name one of the known roles.
var ErrUnknownRole = errors.New("domain: unknown role")

// Role is the closed set of account roles. Authorization compares Role values,
// never raw strings pulled from a token or request body.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleStudent
	RoleTeacher
	RoleAdmin
	RoleDirector
)

var roleNames = map[Role]string{
	RoleStudent:  "student",
	RoleTeacher:  "teacher",
	RoleAdmin:    "admin",
	RoleDirector: "director",
}

// Roles lists every assignable role in a stable order.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleDirector}
}

// RoleNames returns the wire names of every assignable role.
func RoleNames() []string {
	out := make([]string, 0, len(roleNames))
	for _, r := range Roles() {
		out = append(out, r.String())
	}
	return out
}

// ParseRole maps a wire name to a Role. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleUnknown, ErrUnknownRole
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Is reports whether r grants the capabilities of want. There is no role
// hierarchy: only an exact, valid match is accepted.
func (r Role) Is(want Role) bool {
	return r.Valid() && r == want
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
