package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/infrastructure/memory"
)

func newAuthService(t *testing.T, alg string) *AuthService {
	t.Helper()
	h := repository.NewHandleFor(memory.New())
	t.Cleanup(func() { _ = h.Close() })
	return NewAuthService(h, "test-secret", alg)
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newAuthService(t, "HS384")
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "admin", "s3cret")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "clientbook", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t, "HS256")
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "admin", "s3cret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsOtherAlgorithm(t *testing.T) {
	issuer := newAuthService(t, "HS512")
	_, err := issuer.CreateUser(context.Background(), "admin", "pw")
	require.NoError(t, err)
	token, err := issuer.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)

	verifier := NewAuthService(repository.NewHandleFor(memory.New()), "test-secret", "HS256")
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newAuthService(t, "HS256")
	past := time.Now().Add(-2 * time.Hour)
	claims := TokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(past),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestChangePasswordAndDeleteUser(t *testing.T) {
	svc := newAuthService(t, "HS256")
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "admin", "old")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, "admin", "new"))
	_, err = svc.Login(ctx, "admin", "old")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "admin", "new")
	assert.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(ctx, "admin"))
	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin"), repository.ErrNotFound)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "ghost", "x"), repository.ErrNotFound)
}
