package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais mot de passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	h1, err := HashPassword("secret")
	require.NoError(t, err)
	h2, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordBcryptBackcompat(t *testing.T) {
	// Les comptes créés avant la migration Argon2 ont des hashs bcrypt
	legacy, err := bcrypt.GenerateFromPassword([]byte("ancien-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("ancien-secret", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("peu importe", "pas-un-hash")
	assert.Error(t, err)
}
