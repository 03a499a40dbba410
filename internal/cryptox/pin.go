// Package cryptox holds the vault's data-layer crypto helpers. The PIN
// pad itself is UI and lives with the feature pages; only hashing and
// verification belong here.
package cryptox

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPIN = errors.New("pin must be 4 to 8 digits")

// HashPIN validates and hashes a vault PIN for storage.
func HashPIN(pin string) (string, error) {
	if !validPIN(pin) {
		return "", ErrInvalidPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPIN reports whether pin matches the stored hash.
func VerifyPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
