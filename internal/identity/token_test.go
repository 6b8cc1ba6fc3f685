package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://api.greenbops.test",
		Audience:   "greenbops-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testTokenService()

	token, expiresAt, err := svc.Issue("uid-123", "ops@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "uid-123", claims.Subject)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := testTokenService()

	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	svc := testTokenService()
	other := NewTokenService(TokenConfig{
		SigningKey: "different-key",
		Issuer:     "https://api.greenbops.test",
		Audience:   "greenbops-test",
	})

	token, _, err := other.Issue("uid-123", "ops@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongAudience(t *testing.T) {
	svc := testTokenService()
	other := NewTokenService(TokenConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://api.greenbops.test",
		Audience:   "someone-else",
	})

	token, _, err := other.Issue("uid-123", "ops@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
