package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret")

	raw, err := tokens.Mint("user-1", "merchant", time.Minute)
	require.NoError(t, err)

	p, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "merchant", p.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a").Mint("user-1", "customer", time.Minute)
	require.NoError(t, err)

	_, err = NewTokens("secret-b").Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokens("test-secret")
	raw, err := tokens.Mint("user-1", "customer", -time.Minute)
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokens("test-secret").Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
