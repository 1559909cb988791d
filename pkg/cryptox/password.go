package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 10

// MaxPasswordBytes is the longest secret bcrypt will accept.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned when a secret exceeds MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("cryptox: password exceeds 72 bytes")

// HashPassword returns a salted bcrypt digest of password at PasswordCost.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether password matches the bcrypt digest. A
// malformed digest never matches.
func CheckPassword(password, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
