package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "argon2id$v=19$"))

	ok, err := VerifyPassword("admin123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("admin124", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
	} {
		_, err := VerifyPassword("x", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}

func TestJWTSecretRoundTrip(t *testing.T) {
	original := GetJWTSecretByte()
	t.Cleanup(func() { SetJWTSecret(string(original)) })

	SetJWTSecret("s3cret")
	got := GetJWTSecretByte()
	assert.Equal(t, []byte("s3cret"), got)

	got[0] = 'X'
	assert.Equal(t, []byte("s3cret"), GetJWTSecretByte(), "returned slice is a copy")
}
