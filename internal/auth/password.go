// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// It generates a random salt per hash and embeds salt and cost in the output:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 iterations)
//	 version

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
// Configuration refuses anything lower.
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer inputs are rejected
// instead of being silently truncated.
const MaxPasswordBytes = 72

var (
	// ErrPasswordTooLong is returned by Hash for inputs over MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")
	// ErrPasswordMismatch is returned by Verify when the password is wrong.
	ErrPasswordMismatch = errors.New("auth: invalid password")
)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests: cost 4 makes tests run in milliseconds.
type PasswordService struct {
	cost int

	// dummyHash is compared against when the account does not exist, so an
	// unknown email costs the same bcrypt work as a wrong password.
	dummyHash []byte
}

// NewPasswordService creates a PasswordService with the given cost.
// Costs below DefaultCost are rejected.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost < DefaultCost {
		return nil, fmt.Errorf("auth: bcrypt cost must be at least %d, got %d", DefaultCost, cost)
	}
	if cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost must be at most %d, got %d", bcrypt.MaxCost, cost)
	}
	return newPasswordServiceWithCost(cost), nil
}

// NewPasswordServiceForTest creates a PasswordService with an arbitrary cost
// (typically 4, the bcrypt minimum) for tests in other packages.
//
// Do NOT use in production. Cost 4 is far too weak.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return newPasswordServiceWithCost(cost)
}

func newPasswordServiceWithCost(cost int) *PasswordService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("peerhub-timing-equalizer"), cost)
	if err != nil {
		// Only reachable with a cost outside bcrypt's range.
		panic(fmt.Sprintf("auth: generating dummy hash: %v", err))
	}
	return &PasswordService{cost: cost, dummyHash: dummy}
}

// Hash hashes the given plaintext password with bcrypt.
// Returns ErrPasswordTooLong for inputs over 72 bytes.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// Returns nil if they match, ErrPasswordMismatch if they don't, and a
// wrapped error if the hash itself is malformed. The comparison is
// constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyNothing burns the same bcrypt work as Verify against a hash that
// can never match. Call it on the "no such user" path of a login.
func (p *PasswordService) VerifyNothing(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
}
