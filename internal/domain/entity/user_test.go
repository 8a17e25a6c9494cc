package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wikinotes/pkg/security/password"
)

func testHasher(t *testing.T) password.Hasher {
	t.Helper()
	h, err := password.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestUser_SetUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "alice", want: "alice"},
		{name: "trimmed", input: "  bob \t", want: "bob"},
		{name: "max length", input: strings.Repeat("u", MaxUsernameLength), want: strings.Repeat("u", MaxUsernameLength)},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("u", MaxUsernameLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Username: "previous"}
			err := u.SetUsername(tt.input)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "username", ve.Field)
				assert.Equal(t, "previous", u.Username)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.Username)
		})
	}
}

func TestUser_PasswordRoundTrip(t *testing.T) {
	h := testHasher(t)

	u, err := NewUser("alice", h, "secret123")
	require.NoError(t, err)

	assert.True(t, u.HasPassword())
	assert.True(t, u.Authenticate(h, "secret123"))
	assert.False(t, u.Authenticate(h, "wrong"))

	require.NoError(t, u.SetPassword(h, "n3w-secret"))
	assert.True(t, u.Authenticate(h, "n3w-secret"))
	assert.False(t, u.Authenticate(h, "secret123"))
}

func TestUser_AuthenticateFullLengthPassword(t *testing.T) {
	h := testHasher(t)
	secret := strings.Repeat("k", password.MaxLength)

	u, err := NewUser("alice", h, secret)
	require.NoError(t, err)

	assert.True(t, u.Authenticate(h, secret))
	assert.False(t, u.Authenticate(h, secret+"k"))
}

func TestUser_SetPasswordRejectsEmpty(t *testing.T) {
	u := &User{}
	err := u.SetPassword(testHasher(t), "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
	assert.False(t, u.HasPassword())
}

func TestUser_PasswordHashIsUnreadable(t *testing.T) {
	u, err := NewUser("alice", testHasher(t), "secret123")
	require.NoError(t, err)

	got, err := u.PasswordHash()
	assert.ErrorIs(t, err, ErrPasswordUnreadable)
	assert.Empty(t, got)

	// Unset hashes are no more readable.
	got, err = (&User{}).PasswordHash()
	assert.ErrorIs(t, err, ErrPasswordUnreadable)
	assert.Empty(t, got)
}

func TestNewUser_Invalid(t *testing.T) {
	_, err := NewUser("  ", testHasher(t), "secret123")
	assert.True(t, IsValidationError(err))

	_, err = NewUser("alice", testHasher(t), "")
	assert.True(t, IsValidationError(err))
}
