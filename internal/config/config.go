package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const apiAddressEnvVar = "MYINVITE_API_ADDRESS"

type Config struct {
	Environment string

	// APIAddress of the MyInvite backend the clients talk to. The
	// MYINVITE_API_ADDRESS env var overrides whatever the file says.
	APIAddress string `toml:"api_address"`

	// StateDir holds durable session files; empty means ~/.myinvite
	StateDir string `toml:"state_dir"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`

	SentryEnabled bool   `toml:"sentry_enabled"`
	SentryDSN     string `toml:"sentry_dsn"`

	// dev backend
	Port      int    `toml:"port"`
	RedisAddr string `toml:"redis_addr"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the config file and resolves the section for env, applying
// environment variable overrides on top.
func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section missing for env: %s", env)
	}

	cfg.Environment = env
	if apiAddress := os.Getenv(apiAddressEnvVar); apiAddress != "" {
		cfg.APIAddress = apiAddress
	}

	return cfg, nil
}

// StateDirOrDefault resolves the session state directory, defaulting to
// .myinvite under the user's home.
func (c *Config) StateDirOrDefault() (string, error) {
	if c.StateDir != "" {
		return c.StateDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".myinvite"), nil
}
