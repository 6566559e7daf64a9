// Package hash provides the one-way password hashing capability.
package hash

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive/ports"
)

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. A non-positive cost selects bcrypt's
// default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// Hash returns the bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored hash.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
