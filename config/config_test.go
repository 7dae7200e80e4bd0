package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BCRYPT_COST", "")

	cfg := Load()
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "postgres://localhost/cookbook?sslmode=disable", cfg.DatabaseURL)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://db/cookbook")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BCRYPT_COST", "12")

	cfg := Load()
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "postgres://db/cookbook", cfg.DatabaseURL)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadIgnoresBadBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")

	cfg := Load()
	require.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
}
