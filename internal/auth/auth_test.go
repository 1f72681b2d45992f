package auth

import (
	"testing"
	"time"

	"medlink/config"
	"medlink/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "medlink-test"}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, domain.RoleDoctor, domain.VerificationPending)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, domain.RoleDoctor, claims.Role)
	assert.Equal(t, domain.VerificationPending, claims.VerificationStatus)
	assert.Equal(t, domain.Principal{Role: domain.RoleDoctor, ID: 42}, claims.Principal())
}

func TestParseAccessTokenRejects(t *testing.T) {
	cfg := testJWTConfig()

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateAccessToken(cfg, 1, domain.RolePatient, domain.VerificationVerified)
		require.NoError(t, err)
		other := *cfg
		other.Secret = "another-secret"
		_, err = ParseAccessToken(&other, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := *cfg
		expired.Expiry = -time.Minute
		token, err := GenerateAccessToken(&expired, 1, domain.RolePatient, domain.VerificationVerified)
		require.NoError(t, err)
		_, err = ParseAccessToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseAccessToken(cfg, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := GenerateAccessToken(cfg, 1, domain.Role("SUPERUSER"), "")
		require.NoError(t, err)
		_, err = ParseAccessToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "JD", Initials("john doe"))
	assert.Equal(t, "ABC", Initials("Alpha Beta Charlie Delta"))
	assert.Equal(t, "U", Initials("  "))
	assert.Equal(t, "CH", Initials("City Hospital"))
}

func TestGenerateUserCodeRetriesOnCollision(t *testing.T) {
	calls := 0
	code, err := GenerateUserCode("Jane Roe", func(string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Regexp(t, `^JR\d{5}$`, code)
}

func TestGenerateUserCodeGivesUp(t *testing.T) {
	calls := 0
	_, err := GenerateUserCode("Jane Roe", func(string) (bool, error) {
		calls++
		return true, nil
	})
	assert.ErrorIs(t, err, ErrUserCodeExhausted)
	assert.Equal(t, 10, calls)
}
