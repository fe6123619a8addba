package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Security.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, 4, cfg.Security.MaxSessions)
	assert.Equal(t, 15*time.Minute, cfg.Security.CodeTTL)
	assert.Equal(t, "mail:outbox", cfg.Mail.Stream)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SIGMA_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
}
