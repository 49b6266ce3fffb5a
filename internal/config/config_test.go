package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "udm-portal", cfg.JWTIssuer)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoadRejectsWeakSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_DRIVER", "mongodb")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestAllowedOriginsTrimsSpaces(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://a.local , http://b.local"}
	assert.Equal(t, "http://a.local,http://b.local", cfg.AllowedOrigins())
}
