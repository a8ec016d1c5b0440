package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{"matching and long enough", "password1", "password1", nil},
		{"exactly 8 characters", "12345678", "12345678", nil},
		{"mismatch", "password1", "password2", ErrPasswordMismatch},
		{"mismatch wins over length", "short", "other", ErrPasswordMismatch},
		{"too short", "1234567", "1234567", ErrPasswordTooShort},
		{"empty", "", "", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewPassword(tt.password, tt.confirm)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHashPassword_ShortPassword(t *testing.T) {
	hash, err := HashPassword("1234567")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Empty(t, hash)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)
	assert.GreaterOrEqual(t, len(hash), 60)

	assert.True(t, CheckPassword("correct-horse", hash))
	assert.False(t, CheckPassword("Correct-horse", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	hash1, err := HashPassword("testpassword123")
	require.NoError(t, err)
	hash2, err := HashPassword("testpassword123")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("password", "invalid-hash"))
	assert.False(t, CheckPassword("password", ""))
}
