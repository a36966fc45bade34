package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuerRoundTrip(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewIssuer("secret", 30*time.Minute, fixedClock(now))

	raw, err := issuer.Issue(42)
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, TokenTypeAccess, claims.TokenType)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestIssuerRejectsExpired(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	raw, err := NewIssuer("secret", 30*time.Minute, fixedClock(now)).Issue(1)
	require.NoError(t, err)

	later := NewIssuer("secret", 30*time.Minute, fixedClock(now.Add(31*time.Minute)))
	_, err = later.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsForeignSignature(t *testing.T) {
	raw, err := NewIssuer("other", time.Minute, nil).Issue(1)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute, nil).Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsNonAccessTokens(t *testing.T) {
	claims := Claims{
		UserID:    1,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute, nil).Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRequiresUser(t *testing.T) {
	_, err := NewIssuer("secret", time.Minute, nil).Issue(0)
	require.Error(t, err)
}
