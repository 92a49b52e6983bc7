package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIssuer(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, issuer.ttl)
}

func TestIssueAndValidate(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	token, expiresAt, err := issuer.Issue(Principal{AdminID: 7, Email: "admin@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, fixed.Add(time.Hour), expiresAt)

	p, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.AdminID)
	assert.Equal(t, "admin@example.com", p.Email)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Minute)
	require.NoError(t, err)

	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }
	token, _, err := issuer.Issue(Principal{AdminID: 1})
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = issuer.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	a, _ := NewTokenIssuer("secret-a", time.Hour)
	b, _ := NewTokenIssuer("secret-b", time.Hour)

	token, _, err := a.Issue(Principal{AdminID: 1})
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestValidateRejectsTokenWithoutAdmin(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "someone"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithPrincipal(context.Background(), Principal{AdminID: 3, Email: "a@b.c"})
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(3), p.AdminID)
}
