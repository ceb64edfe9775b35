package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	j := NewJWT("secret", "protein-tracker", time.Hour)

	token, err := j.Issue("user-42")
	require.NoError(t, err)

	userID, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestVerifyRejects(t *testing.T) {
	j := NewJWT("secret", "protein-tracker", time.Hour)
	good, err := j.Issue("user-42")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := j.Verify("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWT("other", "protein-tracker", time.Hour).Verify(good)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewJWT("secret", "someone-else", time.Hour).Verify(good)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWT("secret", "protein-tracker", time.Hour)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.Issue("user-42")
		require.NoError(t, err)
		_, err = j.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "protein-tracker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = j.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "protein-tracker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = j.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty user id", func(t *testing.T) {
		_, err := j.Issue("")
		assert.Error(t, err)
	})
}
