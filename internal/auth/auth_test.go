package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hashed)
	assert.True(t, CheckPassword(hashed, "admin123"))
	assert.False(t, CheckPassword(hashed, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))
}

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("secret", 30*time.Minute)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	sub, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewIssuer("other", time.Minute).Issue("admin")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNoSecret(t *testing.T) {
	issuer := NewIssuer("", time.Minute)
	_, err := issuer.Issue("admin")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = issuer.Verify("x.y.z")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Minute).Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
