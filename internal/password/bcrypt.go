package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/accounts-server/internal/model"
)

// MinCost is the lowest bcrypt work factor the hasher accepts.
const MinCost = 10

// ErrTooLong is returned for passwords bcrypt cannot hash without truncation.
var ErrTooLong = errors.New("password exceeds 72 bytes")

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt implements PasswordHasher with salted bcrypt hashes.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given work factor, raised to MinCost if lower.
func NewBcrypt(cost int) *Bcrypt {
	if cost < MinCost {
		cost = MinCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a salted bcrypt hash of password.
func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A mismatch is not an error;
// only a malformed hash is.
func (b *Bcrypt) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
}
