package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadPortal_FromEnv(t *testing.T) {
	t.Setenv("PORTAL_ADDR", ":4000")
	t.Setenv("PORTAL_API_TIMEOUT", "3s")
	t.Setenv("PORTAL_CREDENTIAL_BACKEND", "redis")
	t.Setenv("PORTAL_VERIFY_SESSION", "true")
	t.Setenv("PORTAL_DASHBOARD_REFRESH", "bogus")

	cfg := LoadPortal()

	assert.Equal(t, ":4000", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "redis", cfg.CredentialStore)
	assert.True(t, cfg.VerifySession)
	assert.Equal(t, 30*time.Second, cfg.DashboardRefresh)
}
