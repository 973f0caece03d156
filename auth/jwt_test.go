package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samu777684/financial360/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 24 * time.Hour,
	}
}

func TestGenerateAndValidatePair(t *testing.T) {
	cfg := testConfig()

	access, refresh, err := GenerateTokenPair(cfg, 42, "ana@financial360.com", "usuario")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateAccessToken(cfg, access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ana@financial360.com", claims.Email)
	assert.Equal(t, "usuario", claims.Role)
	assert.Equal(t, "access", claims.Type)

	refClaims, err := ValidateRefreshToken(cfg, refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refClaims.Type)
}

func TestTokenTypeEnforced(t *testing.T) {
	cfg := testConfig()
	access, refresh, err := GenerateTokenPair(cfg, 42, "ana@financial360.com", "usuario")
	require.NoError(t, err)

	// Un refresh no sirve como access ni al revés.
	_, err = ValidateAccessToken(cfg, refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateRefreshToken(cfg, access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenDistinguished(t *testing.T) {
	cfg := testConfig()
	cfg.JWTAccessExpiry = -time.Minute

	access, _, err := GenerateTokenPair(cfg, 42, "ana@financial360.com", "usuario")
	require.NoError(t, err)

	_, err = ValidateAccessToken(cfg, access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	cfg := testConfig()
	access, _, err := GenerateTokenPair(cfg, 42, "ana@financial360.com", "usuario")
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecret = "otro-secreto"
	_, err = ValidateAccessToken(other, access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshRotatesPair(t *testing.T) {
	cfg := testConfig()
	_, refresh, err := GenerateTokenPair(cfg, 42, "ana@financial360.com", "admin")
	require.NoError(t, err)

	newAccess, newRefresh, err := RefreshTokens(cfg, refresh)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(cfg, newAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = ValidateRefreshToken(cfg, newRefresh)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	cfg := testConfig()
	access, _, err := GenerateTokenPair(cfg, 42, "ana@financial360.com", "usuario")
	require.NoError(t, err)

	_, _, err = RefreshTokens(cfg, access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
