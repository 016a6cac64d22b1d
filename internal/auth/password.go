// ABOUTME: Password hashing strategies for stored user credentials
// ABOUTME: Plaintext matches records written by earlier clients; bcrypt is the hardened mode

package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a password into its stored form and checks candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// Plaintext stores passwords as given, the form earlier web clients wrote.
type Plaintext struct{}

// Hash returns password unchanged.
func (Plaintext) Hash(password string) (string, error) {
	return password, nil
}

// Verify compares in constant time.
func (Plaintext) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// Bcrypt hashes new passwords with bcrypt. Stored values that are not bcrypt
// hashes are compared as plaintext, so seeded and legacy accounts keep working.
type Bcrypt struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify checks password against a bcrypt hash or a legacy plaintext value.
func (b Bcrypt) Verify(stored, password string) bool {
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return Plaintext{}.Verify(stored, password)
}

// IsBcryptHash reports whether s looks like a bcrypt hash.
func IsBcryptHash(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}
