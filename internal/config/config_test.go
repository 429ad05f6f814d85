package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile steers Load away from any real .env in the working directory.
func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Flags{EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.NotEmpty(t, cfg.Data.Path)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("NEXTREAD_API_URL", "https://api.nextread.test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(Flags{EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "https://api.nextread.test", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_FlagsBeatEnv(t *testing.T) {
	t.Setenv("NEXTREAD_API_URL", "https://env.nextread.test")

	cfg, err := Load(Flags{APIURL: "https://flag.nextread.test", EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "https://flag.nextread.test", cfg.API.BaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	// loadEnvFile promotes file entries into real env vars; register them
	// with t.Setenv so the test cleans up after itself.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENV", "")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=warn\n# comment\nENV=staging\n"), 0o644))

	cfg, err := Load(Flags{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "staging", cfg.App.Environment)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	_, err := Load(Flags{Environment: "prod-ish", EnvFile: noEnvFile(t)})
	assert.Error(t, err)

	_, err = Load(Flags{LogLevel: "loud", EnvFile: noEnvFile(t)})
	assert.Error(t, err)

	_, err = Load(Flags{APIURL: "nextread.app", EnvFile: noEnvFile(t)})
	assert.Error(t, err, "API URL must carry a scheme")
}

func TestLoad_ExpandsDataPath(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Flags{DataPath: dir, EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Data.Path)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenPath())
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CachePath())
	assert.Equal(t, filepath.Join(dir, "nextread.log"), cfg.LogPath())
}

func TestLoad_TildeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in this environment")
	}

	cfg, err := Load(Flags{DataPath: "~/.nextread-test", EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".nextread-test"), cfg.Data.Path)
}
