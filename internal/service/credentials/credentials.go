// Package credentials verifies identity and secret pairs for the session gate.
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nurvideo/gallery/internal/models"
)

// bcrypt ignores everything past 72 bytes.
const maxSecretLen = 72

type Verifier interface {
	Verify(identity, secret string) bool
}

// Fixed accepts exactly one identity and secret pair.
type Fixed struct {
	identity   string
	secretHash []byte
}

// NewFixed hashes secret once, so verification
// never compares plain secrets.
func NewFixed(identity, secret string) (*Fixed, error) {
	const op = "credentials.NewFixed"

	if len(secret) > maxSecretLen {
		return nil, fmt.Errorf("%s: secret longer than %d bytes", op, maxSecretLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Fixed{
		identity:   identity,
		secretHash: hash,
	}, nil
}

// MustDefault returns verifier for the built-in admin pair.
func MustDefault() *Fixed {
	v, err := NewFixed(models.AdminIdentity, models.AdminSecret)
	if err != nil {
		panic(err)
	}
	return v
}

// Identity returns the only identity accepted.
func (f *Fixed) Identity() string {
	return f.identity
}

func (f *Fixed) Verify(identity, secret string) bool {
	if identity != f.identity {
		return false
	}
	// longer secrets would be truncated by bcrypt and match
	if len(secret) > maxSecretLen {
		return false
	}
	return bcrypt.CompareHashAndPassword(f.secretHash, []byte(secret)) == nil
}
