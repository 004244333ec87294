package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/showspin")
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("TMDB_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Server.Env)
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.SiteURL)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiredFields(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TMDB_API_KEY", "test-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/showspin")
	t.Setenv("TMDB_API_KEY", "")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB_API_KEY")
}

func TestIsProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/showspin")
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
