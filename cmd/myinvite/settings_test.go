package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luisthe-dev/myinvite-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSettings_configSuppliesDefaults(t *testing.T) {
	cfg := &config.Config{
		APIAddress: "https://api.myinvite.co",
		StateDir:   "/var/lib/myinvite",
		LogLevel:   "debug",
	}

	s, err := resolveSettings(cfg, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.myinvite.co", s.apiAddress)
	assert.Equal(t, "/var/lib/myinvite", s.stateDir)
	assert.Equal(t, "debug", s.logLevel)
}

func TestResolveSettings_flagsWinOverConfig(t *testing.T) {
	cfg := &config.Config{
		APIAddress: "https://api.myinvite.co",
		StateDir:   "/var/lib/myinvite",
		LogLevel:   "debug",
	}

	s, err := resolveSettings(cfg, "http://localhost:9999", "/tmp/other-state", "trace")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", s.apiAddress)
	assert.Equal(t, "/tmp/other-state", s.stateDir)
	assert.Equal(t, "trace", s.logLevel)
}

func TestResolveSettings_noConfig(t *testing.T) {
	s, err := resolveSettings(nil, "", "", "")
	require.NoError(t, err)
	assert.Empty(t, s.apiAddress) // client resolves env var / local default
	assert.Contains(t, s.stateDir, ".myinvite")
	assert.Equal(t, defaultLogLevel, s.logLevel)
}

func TestLoadConfig(t *testing.T) {
	// a missing file is not an error, the CLI falls back to defaults
	cfg, err := loadConfig("dev", filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[development]
api_address = "http://localhost:8080"
state_dir = "/tmp/myinvite-dev"
log_level = "trace"
`), 0o600))

	cfg, err = loadConfig("dev", path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:8080", cfg.APIAddress)

	s, err := resolveSettings(cfg, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", s.apiAddress)
	assert.Equal(t, "/tmp/myinvite-dev", s.stateDir)
	assert.Equal(t, "trace", s.logLevel)

	// a present but broken file is an error
	require.NoError(t, os.WriteFile(path, []byte("not toml at all ["), 0o600))
	_, err = loadConfig("dev", path)
	require.Error(t, err)
}
