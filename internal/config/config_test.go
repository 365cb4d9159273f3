package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data/proja.db", cfg.DBPath)
	assert.Equal(t, "", cfg.SeedFile)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, "", cfg.DefaultAuthor)
	assert.Equal(t, 50, cfg.FeedSize)
	assert.False(t, cfg.LogDev)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PROJA_ADDR", ":9090")
	t.Setenv("PROJA_LANG", "ru")
	t.Setenv("PROJA_FEED_SIZE", "5")
	t.Setenv("PROJA_LOG_DEV", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "ru", cfg.Lang)
	assert.Equal(t, 5, cfg.FeedSize)
	assert.True(t, cfg.LogDev)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PROJA_ADDR", ":9090")

	cfg, err := Load("", []string{"-addr", ":7070", "-db", "", "-seed", "board.yaml"})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, "board.yaml", cfg.SeedFile)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PROJA_DEFAULT_AUTHOR=Текущий пользователь\n"), 0o644))
	// godotenv never overrides variables that are already set; register cleanup for the one it sets.
	t.Setenv("PROJA_DEFAULT_AUTHOR", "")
	require.NoError(t, os.Unsetenv("PROJA_DEFAULT_AUTHOR"))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Текущий пользователь", cfg.DefaultAuthor)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad env", func(t *testing.T) {
		t.Setenv("PROJA_FEED_SIZE", "many")
		_, err := Load("", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})

	t.Run("bad flag", func(t *testing.T) {
		_, err := Load("", []string{"-nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse flags:")
	})

	t.Run("missing dotenv is ignored", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), ".env"), nil)
		require.NoError(t, err)
	})

	t.Run("malformed dotenv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PROJA_ADDR=\":9090\n"), 0o644))
		_, err := Load(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load "+path)
	})

	t.Run("non-positive feed", func(t *testing.T) {
		_, err := Load("", []string{"-feed-size", "0"})
		require.Error(t, err)
	})
}
