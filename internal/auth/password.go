package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/uploadauth/internal/apperrors"
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = fmt.Errorf("%w: password is too short", apperrors.ErrValidation)
	ErrPasswordTooLong  = fmt.Errorf("%w: password exceeds maximum length of 72 bytes", apperrors.ErrValidation)
)

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost      int
	minLength int
	compare   func(hash, password []byte) error

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher creates a Hasher. A minLength below 1 is treated as 1.
func NewHasher(cost, minLength int) *Hasher {
	if minLength < 1 {
		minLength = 1
	}
	return &Hasher{cost: cost, minLength: minLength, compare: bcrypt.CompareHashAndPassword}
}

// Hash creates a salted bcrypt hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) < h.minLength {
		return "", fmt.Errorf("%w (minimum %d characters)", ErrPasswordTooShort, h.minLength)
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check compares a password with its hash. bcrypt's comparison is constant-time.
func (h *Hasher) Check(password, hash string) error {
	err := h.compare([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h *Hasher) Verify(password, hash string) bool {
	return h.Check(password, hash) == nil
}

// VerifyMissing runs a full comparison against a throwaway hash at the
// hasher's cost and always reports false. Callers use it when no account
// exists so the response takes as long as a wrong password would.
func (h *Hasher) VerifyMissing(password string) bool {
	h.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), h.cost)
		if err != nil {
			hash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), bcrypt.DefaultCost)
		}
		h.dummy = hash
	})
	_ = h.compare(h.dummy, []byte(password))
	return false
}
