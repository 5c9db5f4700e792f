package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MAMILAND_SECURITY_JWTSECRET", "env-secret")
	t.Setenv("MAMILAND_SECURITY_ADMINPASSWORD", "env-admin-pass")
	t.Setenv("MAMILAND_HTTP_PORT", "9999")
	t.Setenv("MAMILAND_POSTGRES_DSN", "postgres://env/db")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Security.JWTSecret)
	assert.Equal(t, "env-admin-pass", cfg.Security.AdminPassword)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAMILAND_SECURITY_JWTSECRET", "env-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 6, cfg.Security.MinPasswordLength)
	assert.Equal(t, "admin", cfg.Security.AdminUsername)
	assert.Equal(t, 6, cfg.AccessCodes.Length)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security.jwtsecret")
}
