package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"wikinotes/pkg/security/password"
)

// MaxUsernameLength bounds the username in characters.
const MaxUsernameLength = 255

// User is an account that owns favorites and notes.
//
// The password hash is write-only: it can be set through SetPassword and
// checked through Authenticate, but never read back.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time

	// Favorites and Notes are nil when the relation was not loaded.
	Favorites []*Favorite
	Notes     []*Note

	password password.Hash
}

// NewUser builds a user with a validated username and a hashed password.
func NewUser(username string, hasher password.Hasher, plaintext string) (*User, error) {
	u := &User{}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetPassword(hasher, plaintext); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUsername trims and validates value before assigning it.
// Uniqueness is checked by the store, not here.
func (u *User) SetUsername(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &ValidationError{Field: "username", Message: "is required"}
	}
	if utf8.RuneCountInString(value) > MaxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("must not exceed %d characters", MaxUsernameLength),
		}
	}
	u.Username = value
	return nil
}

// SetPassword hashes plaintext and stores only the hash.
func (u *User) SetPassword(hasher password.Hasher, plaintext string) error {
	h, err := hasher.Hash(plaintext)
	if err != nil {
		return &ValidationError{Field: "password", Message: err.Error()}
	}
	u.password = h
	return nil
}

// Authenticate reports whether plaintext matches the stored hash.
func (u *User) Authenticate(hasher password.Hasher, plaintext string) bool {
	return hasher.Verify(u.password, plaintext)
}

// HasPassword reports whether a hash has been set.
func (u *User) HasPassword() bool {
	return !u.password.IsZero()
}

// PasswordHash always fails with ErrPasswordUnreadable.
func (u *User) PasswordHash() (string, error) {
	return "", ErrPasswordUnreadable
}

// PasswordColumn exposes the hash to database/sql as an opaque
// driver.Valuer / sql.Scanner. It is meant for the persistence adapter only.
func (u *User) PasswordColumn() *password.Hash {
	return &u.password
}
