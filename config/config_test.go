package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ADMIN_IDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.AdminIDs)
	assert.Contains(t, cfg.DSN(), "dbname=record_loans")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")
	t.Setenv("ADMIN_IDS", " admin-1 , ,admin-2")
	t.Setenv("REQUESTER_IDS", "user-1")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", cfg.DSN())
	assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.AdminIDs)
	assert.Equal(t, []string{"user-1"}, cfg.RequesterIDs)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)

	l := NewLogger(cfg)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestLoadRejectsBadLogSettings(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		assert.Error(t, err)
	})
}
