// Package password provides salted one-way hashing of user credentials.
//
// Hash is an opaque value: it can be produced by a Hasher, verified by a
// Hasher and persisted through database/sql, but it never renders its bytes
// when printed, logged or marshalled to JSON.
package password

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const redacted = "[REDACTED]"

// MaxLength is the bcrypt input limit in bytes. Longer plaintexts are
// rejected by Hash and never verify.
const MaxLength = 72

var (
	// ErrEmptyPassword is returned when hashing an empty plaintext.
	ErrEmptyPassword = errors.New("password is required")

	// ErrPasswordTooLong is returned when the plaintext exceeds the bcrypt input limit.
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", MaxLength)

	// ErrInvalidCost is returned for a bcrypt work factor outside the supported range.
	ErrInvalidCost = errors.New("invalid bcrypt cost")
)

// Hasher computes and verifies password hashes.
type Hasher interface {
	Hash(plaintext string) (Hash, error)
	Verify(h Hash, plaintext string) bool
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher with the given cost.
// A zero cost selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (b *BcryptHasher) Cost() int {
	return b.cost
}

// Hash returns a salted bcrypt hash of plaintext.
func (b *BcryptHasher) Hash(plaintext string) (Hash, error) {
	if plaintext == "" {
		return Hash{}, ErrEmptyPassword
	}
	if len(plaintext) > MaxLength {
		return Hash{}, ErrPasswordTooLong
	}
	sum, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Hash{}, ErrPasswordTooLong
		}
		return Hash{}, fmt.Errorf("generate password hash: %w", err)
	}
	return Hash{sum: sum}, nil
}

// Verify reports whether plaintext matches h. bcrypt only reads the first
// MaxLength bytes, so anything longer is refused before comparing.
func (b *BcryptHasher) Verify(h Hash, plaintext string) bool {
	if h.IsZero() || len(plaintext) > MaxLength {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.sum, []byte(plaintext)) == nil
}

// Hash is a stored password hash. The zero value holds no hash.
type Hash struct {
	sum []byte
}

// IsZero reports whether the hash is empty.
func (h Hash) IsZero() bool {
	return len(h.sum) == 0
}

// String implements fmt.Stringer without exposing the hash.
func (h Hash) String() string {
	return redacted
}

// GoString implements fmt.GoStringer so %#v does not leak the hash either.
func (h Hash) GoString() string {
	return "password.Hash{" + redacted + "}"
}

// LogValue implements slog.LogValuer.
func (h Hash) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalJSON always fails: hashes are never part of an API representation.
func (h Hash) MarshalJSON() ([]byte, error) {
	return nil, errors.New("password hash is not serializable")
}

// Value implements driver.Valuer so the hash can be written by database/sql.
func (h Hash) Value() (driver.Value, error) {
	if h.IsZero() {
		return nil, errors.New("password hash is empty")
	}
	return string(h.sum), nil
}

// Scan implements sql.Scanner.
func (h *Hash) Scan(src any) error {
	switch v := src.(type) {
	case string:
		h.sum = []byte(v)
	case []byte:
		h.sum = append([]byte(nil), v...)
	case nil:
		h.sum = nil
	default:
		return fmt.Errorf("password hash: unsupported scan type %T", src)
	}
	return nil
}
