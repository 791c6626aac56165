// Package authutil hashes and checks back-office passwords.
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// bcryptCost is lowered by tests.
var bcryptCost = 12

var (
	ErrPasswordTooShort = errors.New("Password must contain at least 8 characters.")
	ErrPasswordTooLong  = errors.New("Password must be less than 128 characters.")
	ErrPasswordCommon   = errors.New("This password is too common. Please choose a different one.")
)

// blocked holds lowercase passwords refused regardless of length. French
// keyboard and vocabulary variants are included.
var blocked = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		12345678 123456789 1234567890 11111111 00000000
		password password1 password123 changeme letmein123 welcome1
		qwertyuiop qwerty123 azertyuiop azerty123
		motdepasse bienvenue iloveyou sunshine princess
		football baseball superman`) {
		blocked[p] = struct{}{}
	}
}

// ValidatePassword enforces the length bounds and the blocked list. The
// blocked list compares case-insensitively.
func ValidatePassword(password string) error {
	switch n := len(password); {
	case n < MinPasswordLength:
		return ErrPasswordTooShort
	case n > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	if _, ok := blocked[strings.ToLower(password)]; ok {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash
// never matches.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
