package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cpptutor/cpptutor-backend/internal/config"
)

func testAuthService(secret string) *AuthService {
	return NewAuthService(&config.Config{
		SessionSecret:  secret,
		SessionExpiry:  time.Hour,
		RememberExpiry: 30 * 24 * time.Hour,
		BcryptCost:     bcrypt.MinCost,
	}, nil)
}

func TestHashPassword_NeverStoresPlaintext(t *testing.T) {
	s := testAuthService("secret")

	hash, err := s.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)
	assert.NotContains(t, hash, "hunter2")
}

func TestCheckPassword(t *testing.T) {
	s := testAuthService("secret")

	hash, err := s.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, s.CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, s.CheckPassword(hash, "wrong horse"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.CheckPassword(hash, ""), ErrInvalidCredentials)
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	s := testAuthService("test-secret")

	token, jti, err := s.GenerateToken(42, "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, jti, claims.ID)
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	s := testAuthService("test-secret")

	_, jti1, err := s.GenerateToken(1, "a", time.Hour)
	require.NoError(t, err)
	_, jti2, err := s.GenerateToken(1, "a", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, jti1, jti2)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := testAuthService("secret-one")
	verifier := testAuthService("secret-two")

	token, _, err := issuer.GenerateToken(1, "alice", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	s := testAuthService("test-secret")

	token, _, err := s.GenerateToken(1, "alice", -time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	s := testAuthService("test-secret")

	_, err := s.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestSessionTTL(t *testing.T) {
	s := testAuthService("secret")

	assert.Equal(t, time.Hour, s.SessionTTL(false))
	assert.Equal(t, 30*24*time.Hour, s.SessionTTL(true))
}
