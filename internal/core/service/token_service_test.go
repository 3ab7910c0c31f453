package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/account-api/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user_1",
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := svc.IssueAccess(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := svc.IssueRefresh(testUser())
	require.NoError(t, err)

	userID, err := svc.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", userID)
}

func TestTokenService_ExpiredAccess(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", -time.Minute, time.Hour)

	token, err := svc.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenService_TamperedToken(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	token, err := svc.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token + "x")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)
	other := NewTokenService("different-secret", "different-refresh", time.Hour, time.Hour)

	token, err := issuer.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = other.VerifyAccess(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenService_SecretsAreSeparate(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", time.Hour, time.Hour)

	refresh, err := svc.IssueRefresh(testUser())
	require.NoError(t, err)

	// A refresh token must not pass as an access token.
	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	access, err := svc.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenService_DefaultTTLs(t *testing.T) {
	svc := NewTokenService("access-secret", "refresh-secret", 0, 0)

	assert.Equal(t, 24*time.Hour, svc.accessTTL)
	assert.Equal(t, 7*24*time.Hour, svc.refreshTTL)
}
