package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	cases := map[string]time.Duration{
		"":    7 * 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"1d":  24 * time.Hour,
		"12h": 12 * time.Hour,
		"90m": 90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"xd", "0d", "-5h", "soon"} {
		_, err := ParseExpiry(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("NODE_ENV", "staging")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/medlink")
	t.Setenv("DIRECT_URL", "postgres://u:p@db-direct:5432/medlink")
	t.Setenv("JWT_EXPIRES_IN", "2d")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "staging", cfg.Server.Env)
	assert.Equal(t, "postgres://u:p@db-direct:5432/medlink", cfg.Database.DirectURL)
	assert.Equal(t, 48*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "change-me-in-production")

	_, err := Load()
	assert.Error(t, err)
}

func TestReminderLocationFallsBackToUTC(t *testing.T) {
	rc := ReminderConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, rc.Location())
}
